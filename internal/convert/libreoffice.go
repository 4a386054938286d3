// Package convert turns office documents into PDF for previews.
package convert

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"time"
)

var ErrConversion = errors.New("conversion failed")

// Converter turns document bytes with the given source extension into PDF.
type Converter interface {
	Convert(ctx context.Context, data []byte, sourceExt string) ([]byte, error)
}

// LibreOffice converts documents with a headless soffice process.
type LibreOffice struct {
	Binary  string
	Timeout time.Duration
}

func NewLibreOffice(binary string, timeout time.Duration) *LibreOffice {
	return &LibreOffice{Binary: binary, Timeout: timeout}
}

func (c *LibreOffice) Convert(ctx context.Context, data []byte, sourceExt string) ([]byte, error) {
	dir, err := os.MkdirTemp("", "filenest-convert-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer func() { _ = os.RemoveAll(dir) }()

	input := filepath.Join(dir, "input."+sourceExt)
	err = os.WriteFile(input, data, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to write input: %w", err)
	}

	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, c.Binary, "--headless", "--convert-to", "pdf", "--outdir", dir, input)
	cmd.Stderr = &stderr
	// Bounds Wait when a killed child leaves stderr open.
	cmd.WaitDelay = time.Second

	start := time.Now()
	err = cmd.Run()
	if ctx.Err() != nil {
		slog.Warn("document conversion timed out", "ext", sourceExt, "timeout", c.Timeout)
		return nil, fmt.Errorf("%w: timed out after %s", ErrConversion, c.Timeout)
	}
	if err != nil {
		slog.Error("document conversion failed", "ext", sourceExt, "error", err, "stderr", stderr.String())
		return nil, fmt.Errorf("%w: %v", ErrConversion, err)
	}

	pdf, err := os.ReadFile(filepath.Join(dir, "input.pdf"))
	if err != nil {
		return nil, fmt.Errorf("%w: converted file missing", ErrConversion)
	}

	slog.Debug("document converted", "ext", sourceExt, "bytes", len(pdf), "duration", time.Since(start))
	return pdf, nil
}
