package main

import (
	"fmt"
	"os"
	"testing"

	html2pdf "github.com/alnah/go-html2pdf"
	"github.com/alnah/go-html2pdf/chromepdf"
	"github.com/alnah/go-html2pdf/internal/config"
	"github.com/alnah/go-html2pdf/wkhtml"
)

func TestExitCodeFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "nil", err: nil, want: ExitSuccess},
		{name: "browser connect", err: chromepdf.ErrBrowserConnect, want: ExitTool},
		{name: "wrapped pdf generation", err: fmt.Errorf("converting: %w", chromepdf.ErrPDFGeneration), want: ExitTool},
		{name: "tool missing", err: wkhtml.ErrNotInstalled, want: ExitTool},
		{name: "conversion failed", err: html2pdf.ErrConversion, want: ExitTool},
		{name: "file not found", err: fmt.Errorf("reading: %w", os.ErrNotExist), want: ExitIO},
		{name: "no input", err: ErrNoInput, want: ExitIO},
		{name: "write failed", err: ErrWriteOutput, want: ExitIO},
		{name: "bad config", err: config.ErrConfigParse, want: ExitUsage},
		{name: "bad page size", err: chromepdf.ErrInvalidPageSize, want: ExitUsage},
		{name: "unknown backend", err: ErrUnknownBackend, want: ExitUsage},
		{name: "bad workers", err: ErrInvalidWorkerCount, want: ExitUsage},
		{name: "unexpected", err: fmt.Errorf("boom"), want: ExitGeneral},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := exitCodeFor(tt.err); got != tt.want {
				t.Errorf("exitCodeFor(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}
