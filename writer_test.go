package html2pdf

import (
	"bytes"
	"errors"
	"io"
	"testing"
)

// Compile-time interface checks.
var (
	_ WriterSource = (*singleWriter)(nil)
	_ WriterSource = (WriterSourceFunc)(nil)
)

func TestNewWriterSource_YieldsSameWriterRepeatedly(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	src := NewWriterSource(&buf)

	// Each acquisition is a fresh short-lived borrow of the same target.
	for i := range 3 {
		w, err := src.Writer()
		if err != nil {
			t.Fatalf("Writer() #%d error = %v", i, err)
		}
		if _, err := io.WriteString(w, "x"); err != nil {
			t.Fatalf("write #%d error = %v", i, err)
		}
	}

	if buf.String() != "xxx" {
		t.Errorf("destination = %q, want %q", buf.String(), "xxx")
	}
}

func TestWriterSourceFunc_InvokedPerAcquisition(t *testing.T) {
	t.Parallel()

	var calls int
	var buf bytes.Buffer
	src := WriterSourceFunc(func() (io.Writer, error) {
		calls++
		return &buf, nil
	})

	for range 2 {
		if _, err := src.Writer(); err != nil {
			t.Fatalf("Writer() error = %v", err)
		}
	}

	if calls != 2 {
		t.Errorf("factory invoked %d times, want 2", calls)
	}
}

func TestWriterSourceFunc_PropagatesAcquisitionError(t *testing.T) {
	t.Parallel()

	wantErr := errors.New("destination not ready")
	src := WriterSourceFunc(func() (io.Writer, error) {
		return nil, wantErr
	})

	if _, err := src.Writer(); !errors.Is(err, wantErr) {
		t.Errorf("Writer() error = %v, want %v", err, wantErr)
	}
}
