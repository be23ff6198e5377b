package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	flag "github.com/spf13/pflag"

	html2pdf "github.com/alnah/go-html2pdf"
	"github.com/alnah/go-html2pdf/chromepdf"
	"github.com/alnah/go-html2pdf/internal/config"
	"github.com/alnah/go-html2pdf/markdown"
	"github.com/alnah/go-html2pdf/minpdf"
	"github.com/alnah/go-html2pdf/weasyprint"
	"github.com/alnah/go-html2pdf/wkhtml"
)

// Sentinel errors for CLI operations.
var (
	ErrNoInput            = errors.New("no input specified")
	ErrReadInput          = errors.New("failed to read input file")
	ErrReadCSS            = errors.New("failed to read CSS file")
	ErrWriteOutput        = errors.New("failed to write output file")
	ErrUnknownBackend     = errors.New("unknown backend")
	ErrInvalidWorkerCount = errors.New("invalid worker count")
)

// File permission constants.
const (
	dirPermissions  = 0o750 // rwxr-x---: owner full, group read+execute
	filePermissions = 0o644 // rw-r--r--: owner read+write, others read
)

// stdinMarker selects stdin/stdout in place of a file path.
const stdinMarker = "-"

// fileToConvert pairs an input path with its resolved output path.
type fileToConvert struct {
	inputPath  string
	outputPath string
}

// conversionResult holds the outcome of a single conversion.
type conversionResult struct {
	inputPath string
	duration  time.Duration
}

// backendSource hands out backends for conversions. Chrome backends come
// from a pool so parallel conversions each get their own browser; the
// other backends are stateless and shared.
type backendSource struct {
	pool   *chromepdf.Pool
	shared html2pdf.Backend
}

func (s *backendSource) acquire() html2pdf.Backend {
	if s.pool != nil {
		return s.pool.Acquire()
	}
	return s.shared
}

func (s *backendSource) release(b html2pdf.Backend) {
	if s.pool != nil {
		if cb, ok := b.(*chromepdf.Backend); ok {
			s.pool.Release(cb)
		}
	}
}

func (s *backendSource) close() error {
	if s.pool != nil {
		return s.pool.Close()
	}
	if c, ok := s.shared.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// run executes the CLI. It is separated from main so tests can drive it
// with fake stdio and inspect the returned error.
func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	flags, inputs, err := parseFlags(args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}

	if flags.version {
		fmt.Fprintf(stdout, "html2pdf %s\n", Version)
		return nil
	}

	cfg := config.Default()
	if flags.config != "" {
		cfg, err = config.Load(flags.config)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
	}
	mergeFlags(flags, &cfg)

	if cfg.Workers < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidWorkerCount, cfg.Workers)
	}
	timeout, err := cfg.ParseTimeout()
	if err != nil {
		return err
	}

	if len(inputs) == 0 {
		return fmt.Errorf("%w: provide input files or %q for stdin", ErrNoInput, stdinMarker)
	}

	var css string
	if cfg.CSS != "" {
		data, err := os.ReadFile(cfg.CSS) // #nosec G304 -- path comes from the user's own --css flag
		if err != nil {
			return fmt.Errorf("%w: %v", ErrReadCSS, err)
		}
		css = string(data)
	}

	source, err := newBackendSource(&cfg, timeout)
	if err != nil {
		return err
	}
	defer source.close() //nolint:errcheck

	files, err := resolveOutputs(inputs, flags.output)
	if err != nil {
		return err
	}

	if len(files) == 1 {
		return convertOne(source, &cfg, css, files[0], stdin, stdout, stderr, flags.verbose)
	}
	return convertBatch(source, &cfg, css, files, stderr, flags.verbose)
}

// mergeFlags overlays explicitly set CLI flags on the config (CLI wins).
func mergeFlags(flags *cliFlags, cfg *config.Config) {
	if flags.backend != "" {
		cfg.Backend = flags.backend
	}
	if flags.markdown {
		cfg.Markdown = true
	}
	if flags.css != "" {
		cfg.CSS = flags.css
	}
	if flags.timeout != "" {
		cfg.Timeout = flags.timeout
	}
	if flags.workers != 0 {
		cfg.Workers = flags.workers
	}
	if flags.pageSize != "" {
		cfg.Page.Size = flags.pageSize
	}
	if flags.orientation != "" {
		cfg.Page.Orientation = flags.orientation
	}
	if flags.margin != marginSentinel {
		cfg.Page.Margin = flags.margin
	}
}

// newBackendSource builds the backend (or pool, for Chrome) selected by
// the config.
func newBackendSource(cfg *config.Config, timeout time.Duration) (*backendSource, error) {
	switch cfg.Backend {
	case "chrome":
		page := &chromepdf.PageSettings{
			Size:        cfg.Page.Size,
			Orientation: cfg.Page.Orientation,
			Margin:      cfg.Page.Margin,
		}
		if err := page.Validate(); err != nil {
			return nil, err
		}
		opts := []chromepdf.Option{chromepdf.WithPageSettings(page)}
		if timeout > 0 {
			opts = append(opts, chromepdf.WithTimeout(timeout))
		}
		size := chromepdf.ResolvePoolSize(cfg.Workers)
		return &backendSource{pool: chromepdf.NewPool(size, opts...)}, nil

	case "wkhtmltopdf":
		opts := []wkhtml.Option{}
		if cfg.Tools.Wkhtmltopdf != "" {
			opts = append(opts, wkhtml.WithPath(cfg.Tools.Wkhtmltopdf))
		}
		if timeout > 0 {
			opts = append(opts, wkhtml.WithTimeout(timeout))
		}
		return &backendSource{shared: wkhtml.New(opts...)}, nil

	case "weasyprint":
		opts := []weasyprint.Option{}
		if cfg.Tools.Weasyprint != "" {
			opts = append(opts, weasyprint.WithPath(cfg.Tools.Weasyprint))
		}
		if timeout > 0 {
			opts = append(opts, weasyprint.WithTimeout(timeout))
		}
		return &backendSource{shared: weasyprint.New(opts...)}, nil

	case "minpdf":
		return &backendSource{shared: minpdf.New()}, nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Backend)
	}
}

// resolveOutputs maps input paths to output paths. A single input honors
// --output as a file path; multiple inputs treat it as a directory.
func resolveOutputs(inputs []string, output string) ([]fileToConvert, error) {
	if len(inputs) == 1 {
		in := inputs[0]
		out := output
		if out == "" {
			if in == stdinMarker {
				out = stdinMarker
			} else {
				out = replaceExt(in, ".pdf")
			}
		}
		return []fileToConvert{{inputPath: in, outputPath: out}}, nil
	}

	outDir := output
	if outDir != "" && outDir != stdinMarker {
		if err := os.MkdirAll(outDir, dirPermissions); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrWriteOutput, err)
		}
	}
	files := make([]fileToConvert, 0, len(inputs))
	for _, in := range inputs {
		if in == stdinMarker {
			return nil, fmt.Errorf("%w: stdin cannot be combined with other inputs", ErrNoInput)
		}
		out := replaceExt(in, ".pdf")
		if outDir != "" {
			out = filepath.Join(outDir, filepath.Base(out))
		}
		files = append(files, fileToConvert{inputPath: in, outputPath: out})
	}
	return files, nil
}

func replaceExt(path, ext string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + ext
}

// isMarkdownInput reports whether the Markdown front-end applies to path.
func isMarkdownInput(path string, cfg *config.Config) bool {
	if cfg.Markdown {
		return true
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown":
		return true
	}
	return false
}

// wrapBackend layers the Markdown front-end on b when it applies.
func wrapBackend(b html2pdf.Backend, inputPath, css string, cfg *config.Config) html2pdf.Backend {
	if !isMarkdownInput(inputPath, cfg) {
		return b
	}
	var opts []markdown.Option
	if css != "" {
		opts = append(opts, markdown.WithCSS(css))
	}
	return markdown.New(b, opts...)
}

// convertOne handles the single-input case, including stdin/stdout.
func convertOne(source *backendSource, cfg *config.Config, css string, f fileToConvert, stdin io.Reader, stdout io.Writer, stderr io.Writer, verbose bool) error {
	doc, err := readInput(f.inputPath, stdin)
	if err != nil {
		return err
	}
	// Release the raw pooled backend, not the markdown wrapper: the pool
	// only recognizes its own backend type.
	raw := source.acquire()
	defer source.release(raw)
	backend := wrapBackend(raw, f.inputPath, css, cfg)

	start := time.Now()
	if f.outputPath == stdinMarker {
		if err := html2pdf.Convert(backend, doc, stdout); err != nil {
			return err
		}
	} else if err := convertToFile(backend, doc, f.outputPath); err != nil {
		return err
	}
	if verbose {
		fmt.Fprintf(stderr, "%s -> %s (%s)\n", f.inputPath, f.outputPath, time.Since(start).Round(time.Millisecond))
	}
	return nil
}

// convertBatch converts files in parallel, bounded by the worker count.
// Failures do not stop the batch; all are reported and joined.
func convertBatch(source *backendSource, cfg *config.Config, css string, files []fileToConvert, stderr io.Writer, verbose bool) error {
	workers := chromepdf.ResolvePoolSize(cfg.Workers)
	sem := make(chan struct{}, workers)

	var errs []error
	scopeErr := html2pdf.Scoped(func(scope html2pdf.Scope) error {
		jobs := make([]*html2pdf.Job[conversionResult], len(files))
		for i, f := range files {
			jobs[i] = html2pdf.Spawn(scope, func() (conversionResult, error) {
				sem <- struct{}{}
				defer func() { <-sem }()

				raw := source.acquire()
				defer source.release(raw)
				backend := wrapBackend(raw, f.inputPath, css, cfg)

				start := time.Now()
				doc, err := readInput(f.inputPath, nil)
				if err != nil {
					return conversionResult{}, err
				}
				if err := convertToFile(backend, doc, f.outputPath); err != nil {
					return conversionResult{}, err
				}
				return conversionResult{inputPath: f.inputPath, duration: time.Since(start)}, nil
			})
		}
		for i, job := range jobs {
			res, err := job.Join()
			if err != nil {
				fmt.Fprintf(stderr, "FAIL %s: %v\n", files[i].inputPath, err)
				errs = append(errs, fmt.Errorf("%s: %w", files[i].inputPath, err))
				continue
			}
			if verbose {
				fmt.Fprintf(stderr, "OK   %s -> %s (%s)\n", res.inputPath, files[i].outputPath, res.duration.Round(time.Millisecond))
			}
		}
		return nil
	})
	if scopeErr != nil {
		return scopeErr
	}
	return errors.Join(errs...)
}

// readInput loads the document from a file or, for "-", from stdin.
func readInput(path string, stdin io.Reader) ([]byte, error) {
	if path == stdinMarker {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrReadInput, err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path) // #nosec G304 -- path is a user-supplied CLI argument
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrReadInput, err)
	}
	return data, nil
}

// convertToFile writes the conversion result to path atomically enough
// for CLI use: errors remove the partial file.
func convertToFile(backend html2pdf.Backend, doc []byte, path string) error {
	out, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, filePermissions) // #nosec G304 -- path derives from user-supplied CLI arguments
	if err != nil {
		return fmt.Errorf("%w: %v", ErrWriteOutput, err)
	}
	if err := html2pdf.Convert(backend, doc, out); err != nil {
		_ = out.Close()
		_ = os.Remove(path)
		return err
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteOutput, err)
	}
	return nil
}
