package main

import (
	"errors"
	"os"

	html2pdf "github.com/alnah/go-html2pdf"
	"github.com/alnah/go-html2pdf/chromepdf"
	"github.com/alnah/go-html2pdf/internal/config"
	"github.com/alnah/go-html2pdf/markdown"
	"github.com/alnah/go-html2pdf/weasyprint"
	"github.com/alnah/go-html2pdf/wkhtml"
)

// Exit codes for the html2pdf CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess = 0 // Successful conversion
	ExitGeneral = 1 // General/unexpected error
	ExitUsage   = 2 // Invalid flags, config, or validation
	ExitIO      = 3 // File not found, permission denied
	ExitTool    = 4 // Backend tool errors (browser, external binaries)
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Backend tool errors (exit 4)
	if errors.Is(err, chromepdf.ErrBrowserConnect) ||
		errors.Is(err, chromepdf.ErrPageCreate) ||
		errors.Is(err, chromepdf.ErrPageLoad) ||
		errors.Is(err, chromepdf.ErrPDFGeneration) ||
		errors.Is(err, wkhtml.ErrNotInstalled) ||
		errors.Is(err, wkhtml.ErrTimedOut) ||
		errors.Is(err, weasyprint.ErrNotInstalled) ||
		errors.Is(err, weasyprint.ErrTimedOut) ||
		errors.Is(err, html2pdf.ErrConversion) {
		return ExitTool
	}

	// I/O errors (exit 3)
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, ErrNoInput) ||
		errors.Is(err, ErrReadInput) ||
		errors.Is(err, ErrReadCSS) ||
		errors.Is(err, ErrWriteOutput) {
		return ExitIO
	}

	// Usage/config/validation errors (exit 2)
	if errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrInvalidTimeout) ||
		errors.Is(err, chromepdf.ErrInvalidPageSize) ||
		errors.Is(err, chromepdf.ErrInvalidOrientation) ||
		errors.Is(err, chromepdf.ErrInvalidMargin) ||
		errors.Is(err, markdown.ErrRender) ||
		errors.Is(err, ErrUnknownBackend) ||
		errors.Is(err, ErrInvalidWorkerCount) {
		return ExitUsage
	}

	return ExitGeneral
}
