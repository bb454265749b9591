package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/velsom/centterm/internal/logging"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestWatcherLogsChange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "centterm.toml")
	if err := os.WriteFile(path, []byte("[general]\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	var out syncBuffer
	log := logging.NewLogger(logging.LoggerConfig{Output: &out})

	w, err := WatchFile(path, log)
	if err != nil {
		t.Fatalf("WatchFile: %v", err)
	}
	defer w.Close()

	if err := os.WriteFile(path, []byte("[general]\necho = true\n"), 0o644); err != nil {
		t.Fatalf("rewrite: %v", err)
	}

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if strings.Contains(out.String(), "restart to apply") {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("change was not logged")
}

func TestWatcherIgnoresSiblings(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "centterm.toml")
	if err := os.WriteFile(path, []byte("[general]\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	var out syncBuffer
	log := logging.NewLogger(logging.LoggerConfig{Output: &out})

	w, err := WatchFile(path, log)
	if err != nil {
		t.Fatalf("WatchFile: %v", err)
	}
	defer w.Close()

	if err := os.WriteFile(filepath.Join(dir, "other.txt"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write sibling: %v", err)
	}

	time.Sleep(200 * time.Millisecond)
	if s := out.String(); strings.Contains(s, "restart to apply") {
		t.Errorf("sibling write was reported:\n%s", s)
	}
}

func TestWatcherCloseTwice(t *testing.T) {
	path := filepath.Join(t.TempDir(), "centterm.toml")
	if err := os.WriteFile(path, []byte(""), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	log := logging.NewLogger(logging.LoggerConfig{Output: &syncBuffer{}})
	w, err := WatchFile(path, log)
	if err != nil {
		t.Fatalf("WatchFile: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
}
