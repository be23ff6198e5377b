// Package process runs external conversion tools with stream wiring,
// stderr capture, and tree-kill timeout enforcement.
package process

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync/atomic"
	"time"
)

// ErrTimedOut reports that a tool exceeded its deadline and was killed.
var ErrTimedOut = errors.New("process timed out")

// Run executes one subprocess with stdin wired to the document stream and
// stdout to the destination. Stderr is captured and folded into the
// returned error. When timeout expires the whole process group is killed
// and the error matches ErrTimedOut.
func Run(path string, args []string, timeout time.Duration, stdin io.Reader, stdout io.Writer) error {
	cmd := exec.Command(path, args...)
	cmd.Stdin = stdin
	cmd.Stdout = stdout

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	Isolate(cmd)

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("starting %s: %w", path, err)
	}

	var timedOut atomic.Bool
	timer := time.AfterFunc(timeout, func() {
		timedOut.Store(true)
		KillProcessGroup(cmd.Process.Pid)
		_ = cmd.Process.Kill()
	})
	defer timer.Stop()

	if err := cmd.Wait(); err != nil {
		if timedOut.Load() {
			return fmt.Errorf("%w after %s", ErrTimedOut, timeout)
		}
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return fmt.Errorf("%s: %w", msg, err)
		}
		return err
	}
	return nil
}
