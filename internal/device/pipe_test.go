package device

import (
	"bytes"
	"errors"
	"testing"
	"time"
)

func TestPipeReadWrite(t *testing.T) {
	p := NewPipe()
	defer p.Close()

	p.HostSend('h', 'i')
	for _, want := range []byte{'h', 'i'} {
		got, err := p.ReadByte()
		if err != nil {
			t.Fatalf("ReadByte: %v", err)
		}
		if got != want {
			t.Errorf("ReadByte = %#02x, want %#02x", got, want)
		}
	}

	if err := p.WriteByte('x'); err != nil {
		t.Fatalf("WriteByte: %v", err)
	}
	if got := p.Sent(); !bytes.Equal(got, []byte{'x'}) {
		t.Errorf("Sent = %v, want ['x']", got)
	}
}

func TestPipeReadTimeout(t *testing.T) {
	p := NewPipe()
	defer p.Close()

	_, err := p.ReadByte()
	if !errors.Is(err, ErrReadTimeout) {
		t.Errorf("ReadByte err = %v, want ErrReadTimeout", err)
	}
}

func TestPipeCancelRead(t *testing.T) {
	p := NewPipe()
	defer p.Close()
	p.timeout = 10 * time.Second

	errs := make(chan error, 1)
	go func() {
		_, err := p.ReadByte()
		errs <- err
	}()

	time.Sleep(10 * time.Millisecond)
	p.CancelRead()

	select {
	case err := <-errs:
		if !errors.Is(err, ErrReadTimeout) {
			t.Errorf("canceled read err = %v, want ErrReadTimeout", err)
		}
	case <-time.After(time.Second):
		t.Fatal("CancelRead did not unblock the pending read")
	}

	if p.CancelCount() != 1 {
		t.Errorf("CancelCount = %d, want 1", p.CancelCount())
	}
}

func TestPipeInjectedFaults(t *testing.T) {
	p := NewPipe()
	defer p.Close()

	boom := errors.New("boom")
	p.FailReads(boom)
	_, err := p.ReadByte()
	var le *LinkError
	if !errors.As(err, &le) || !errors.Is(err, boom) {
		t.Errorf("ReadByte err = %v, want LinkError wrapping boom", err)
	}
	if le != nil && le.Op != "read" {
		t.Errorf("LinkError.Op = %q, want \"read\"", le.Op)
	}

	p.FailWrites(boom)
	err = p.WriteByte('x')
	if !errors.As(err, &le) || le.Op != "write" {
		t.Errorf("WriteByte err = %v, want write LinkError", err)
	}
}

func TestPipeClose(t *testing.T) {
	p := NewPipe()
	p.timeout = 10 * time.Second

	errs := make(chan error, 1)
	go func() {
		_, err := p.ReadByte()
		errs <- err
	}()

	time.Sleep(10 * time.Millisecond)
	p.Close()

	select {
	case err := <-errs:
		if !errors.Is(err, ErrClosed) {
			t.Errorf("read after Close err = %v, want ErrClosed", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Close did not unblock the pending read")
	}
}
