package pdftext

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"
)

// Runner lets us stub external commands in tests.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (stdout, stderr []byte, err error)
}

// poppler's documented pdftotext exit statuses
var pdftotextExit = map[int]string{
	1:  "error opening the PDF",
	2:  "error opening the output file",
	3:  "PDF permissions forbid text extraction",
	99: "other error",
}

type execRunner struct {
	logger *slog.Logger
}

func (r execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	bin, err := exec.LookPath(name)
	if err != nil {
		return nil, nil, fmt.Errorf("%s is not installed or not on PATH: %w", name, err)
	}

	start := time.Now()
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Stdout, cmd.Stderr = &stdout, &stderr
	err = cmd.Run()
	elapsed := time.Since(start).Milliseconds()

	if err != nil {
		var exitErr *exec.ExitError
		code := -1
		if errors.As(err, &exitErr) {
			code = exitErr.ExitCode()
			if reason, ok := pdftotextExit[code]; ok {
				err = fmt.Errorf("%s: %s: %w", name, reason, err)
			}
		}
		if ctx.Err() != nil {
			err = fmt.Errorf("%s: %w", name, ctx.Err())
		}
		r.logger.Warn("pdftext.exec.failed",
			"bin", bin,
			"args", strings.Join(args, " "),
			"exit_code", code,
			"stderr", firstLine(stderr.String()),
			"elapsed_ms", elapsed,
			"error", err,
		)
		return stdout.Bytes(), stderr.Bytes(), err
	}

	r.logger.Debug("pdftext.exec.ok",
		"bin", bin,
		"stdout_bytes", stdout.Len(),
		"elapsed_ms", elapsed,
	)
	return stdout.Bytes(), stderr.Bytes(), nil
}

// firstLine keeps log lines short; poppler repeats the same syntax error per object.
func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i] + " ..."
	}
	const max = 512
	if len(s) > max {
		return s[:max] + "..."
	}
	return s
}
