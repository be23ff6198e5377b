package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alnah/go-html2pdf/chromepdf"
	"github.com/alnah/go-html2pdf/internal/config"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
	return path
}

// runCLI drives run with fake stdio and returns stdout, stderr, and the error.
func runCLI(t *testing.T, args []string, stdin string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	err := run(append([]string{"html2pdf"}, args...), strings.NewReader(stdin), &stdout, &stderr)
	return stdout.String(), stderr.String(), err
}

func TestRunSingleFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	in := writeFile(t, dir, "doc.html", "<html><body><p>Hello world</p></body></html>")

	_, _, err := runCLI(t, []string{"--backend", "minpdf", in}, "")
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	out := filepath.Join(dir, "doc.pdf")
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		t.Errorf("output is not a PDF, starts with %q", data[:min(len(data), 8)])
	}
}

func TestRunStdinStdout(t *testing.T) {
	t.Parallel()

	stdout, _, err := runCLI(t, []string{"--backend", "minpdf", "-"}, "<p>From stdin</p>")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.HasPrefix(stdout, "%PDF-") {
		t.Errorf("stdout is not a PDF, starts with %q", stdout[:min(len(stdout), 8)])
	}
}

func TestRunMarkdownByExtension(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	in := writeFile(t, dir, "doc.md", "# Title\n\nSome *emphasis* here.\n")

	_, _, err := runCLI(t, []string{"--backend", "minpdf", in}, "")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "doc.pdf")); err != nil {
		t.Errorf("output missing: %v", err)
	}
}

func TestRunBatch(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	a := writeFile(t, dir, "a.html", "<p>A</p>")
	b := writeFile(t, dir, "b.html", "<p>B</p>")
	outDir := filepath.Join(dir, "out")

	_, stderr, err := runCLI(t, []string{"--backend", "minpdf", "-o", outDir, "-v", a, b}, "")
	if err != nil {
		t.Fatalf("run: %v\nstderr: %s", err, stderr)
	}
	for _, name := range []string{"a.pdf", "b.pdf"} {
		if _, err := os.Stat(filepath.Join(outDir, name)); err != nil {
			t.Errorf("%s missing: %v", name, err)
		}
	}
	if !strings.Contains(stderr, "OK") {
		t.Errorf("verbose batch output missing OK lines: %q", stderr)
	}
}

func TestRunBatchContinuesOnFailure(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	good := writeFile(t, dir, "good.html", "<p>fine</p>")
	missing := filepath.Join(dir, "missing.html")

	_, stderr, err := runCLI(t, []string{"--backend", "minpdf", good, missing}, "")
	if !errors.Is(err, ErrReadInput) {
		t.Errorf("err = %v, want ErrReadInput", err)
	}
	if !strings.Contains(stderr, "FAIL") {
		t.Errorf("stderr missing FAIL line: %q", stderr)
	}
	// The good file still converted.
	if _, statErr := os.Stat(filepath.Join(dir, "good.pdf")); statErr != nil {
		t.Errorf("good.pdf missing: %v", statErr)
	}
}

func TestRunErrors(t *testing.T) {
	t.Parallel()

	t.Run("no input", func(t *testing.T) {
		t.Parallel()
		_, _, err := runCLI(t, []string{"--backend", "minpdf"}, "")
		if !errors.Is(err, ErrNoInput) {
			t.Errorf("err = %v, want ErrNoInput", err)
		}
	})

	t.Run("unknown backend", func(t *testing.T) {
		t.Parallel()
		_, _, err := runCLI(t, []string{"--backend", "troff", "-"}, "<p>x</p>")
		if !errors.Is(err, ErrUnknownBackend) {
			t.Errorf("err = %v, want ErrUnknownBackend", err)
		}
	})

	t.Run("negative workers", func(t *testing.T) {
		t.Parallel()
		_, _, err := runCLI(t, []string{"--backend", "minpdf", "-w", "-2", "-"}, "<p>x</p>")
		if !errors.Is(err, ErrInvalidWorkerCount) {
			t.Errorf("err = %v, want ErrInvalidWorkerCount", err)
		}
	})

	t.Run("missing css", func(t *testing.T) {
		t.Parallel()
		_, _, err := runCLI(t, []string{"--backend", "minpdf", "--css", "/nonexistent.css", "-"}, "<p>x</p>")
		if !errors.Is(err, ErrReadCSS) {
			t.Errorf("err = %v, want ErrReadCSS", err)
		}
	})

	t.Run("missing config", func(t *testing.T) {
		t.Parallel()
		_, _, err := runCLI(t, []string{"-c", "/nonexistent.yaml", "-"}, "<p>x</p>")
		if !errors.Is(err, config.ErrConfigNotFound) {
			t.Errorf("err = %v, want ErrConfigNotFound", err)
		}
	})

	t.Run("bad timeout", func(t *testing.T) {
		t.Parallel()
		_, _, err := runCLI(t, []string{"--backend", "minpdf", "-t", "soon", "-"}, "<p>x</p>")
		if !errors.Is(err, config.ErrInvalidTimeout) {
			t.Errorf("err = %v, want ErrInvalidTimeout", err)
		}
	})
}

func TestRunVersion(t *testing.T) {
	t.Parallel()

	stdout, _, err := runCLI(t, []string{"--version"}, "")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(stdout, "html2pdf") {
		t.Errorf("version output = %q", stdout)
	}
}

func TestRunWithConfigFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfgPath := writeFile(t, dir, "config.yaml", "backend: minpdf\n")
	in := writeFile(t, dir, "doc.html", "<p>Configured</p>")

	_, _, err := runCLI(t, []string{"-c", cfgPath, in}, "")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "doc.pdf")); err != nil {
		t.Errorf("output missing: %v", err)
	}
}

func TestResolveOutputs(t *testing.T) {
	t.Parallel()

	t.Run("single default output", func(t *testing.T) {
		t.Parallel()
		files, err := resolveOutputs([]string{"a/doc.html"}, "")
		if err != nil {
			t.Fatalf("resolveOutputs: %v", err)
		}
		if files[0].outputPath != "a/doc.pdf" {
			t.Errorf("output = %q", files[0].outputPath)
		}
	})

	t.Run("single explicit output", func(t *testing.T) {
		t.Parallel()
		files, err := resolveOutputs([]string{"doc.html"}, "custom.pdf")
		if err != nil {
			t.Fatalf("resolveOutputs: %v", err)
		}
		if files[0].outputPath != "custom.pdf" {
			t.Errorf("output = %q", files[0].outputPath)
		}
	})

	t.Run("stdin defaults to stdout", func(t *testing.T) {
		t.Parallel()
		files, err := resolveOutputs([]string{"-"}, "")
		if err != nil {
			t.Fatalf("resolveOutputs: %v", err)
		}
		if files[0].outputPath != "-" {
			t.Errorf("output = %q", files[0].outputPath)
		}
	})

	t.Run("multiple into directory", func(t *testing.T) {
		t.Parallel()
		dir := filepath.Join(t.TempDir(), "out")
		files, err := resolveOutputs([]string{"x/a.html", "y/b.md"}, dir)
		if err != nil {
			t.Fatalf("resolveOutputs: %v", err)
		}
		if files[0].outputPath != filepath.Join(dir, "a.pdf") {
			t.Errorf("output[0] = %q", files[0].outputPath)
		}
		if files[1].outputPath != filepath.Join(dir, "b.pdf") {
			t.Errorf("output[1] = %q", files[1].outputPath)
		}
	})

	t.Run("stdin mixed with files rejected", func(t *testing.T) {
		t.Parallel()
		_, err := resolveOutputs([]string{"-", "b.html"}, "")
		if !errors.Is(err, ErrNoInput) {
			t.Errorf("err = %v, want ErrNoInput", err)
		}
	})
}

// stubRenderer lets pool tests construct Chrome backends without a browser.
type stubRenderer struct{}

func (stubRenderer) Render([]byte, *chromepdf.PageSettings) ([]byte, error) {
	return []byte("%PDF-1.4"), nil
}

func (stubRenderer) Close() error { return nil }

func TestBackendSourceReleasesPoolSlotAfterWrap(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	source := &backendSource{pool: chromepdf.NewPool(1, chromepdf.WithRenderer(stubRenderer{}))}
	defer source.close() //nolint:errcheck

	// A markdown input wraps the pooled backend; releasing the raw backend
	// must still return the slot to the size-1 pool.
	raw := source.acquire()
	wrapped := wrapBackend(raw, "doc.md", "", &cfg)
	if wrapped == raw {
		t.Fatal("markdown input did not wrap the backend")
	}
	source.release(raw)

	reacquired := make(chan struct{})
	go func() {
		b := source.acquire()
		source.release(b)
		close(reacquired)
	}()

	select {
	case <-reacquired:
	case <-time.After(5 * time.Second):
		t.Fatal("pool slot was not released: second acquire blocked")
	}
}

func TestIsMarkdownInput(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	forced := config.Default()
	forced.Markdown = true

	tests := []struct {
		name string
		path string
		cfg  *config.Config
		want bool
	}{
		{name: "md extension", path: "doc.md", cfg: &cfg, want: true},
		{name: "markdown extension", path: "doc.MARKDOWN", cfg: &cfg, want: true},
		{name: "html extension", path: "doc.html", cfg: &cfg, want: false},
		{name: "forced by config", path: "doc.html", cfg: &forced, want: true},
		{name: "stdin not markdown by default", path: "-", cfg: &cfg, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := isMarkdownInput(tt.path, tt.cfg); got != tt.want {
				t.Errorf("isMarkdownInput(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}
