// Package magick wraps the ImageMagick convert binary for cover rendering.
package magick

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

var commandContext = exec.CommandContext

// Client defines cover image rendering behaviour.
type Client interface {
	Render(ctx context.Context, outputPath, text string) error
}

// Option configures the CLI client.
type Option func(*CLI)

// WithBinary overrides the default binary name.
func WithBinary(binary string) Option {
	return func(c *CLI) {
		if binary != "" {
			c.binary = binary
		}
	}
}

// CLI wraps the convert command-line tool.
type CLI struct {
	binary string
}

// NewCLI constructs a CLI client using defaults.
func NewCLI(opts ...Option) *CLI {
	cli := &CLI{binary: "convert"}
	for _, opt := range opts {
		opt(cli)
	}
	return cli
}

// Render draws text centered on a white 600x800 canvas at outputPath.
func (c *CLI) Render(ctx context.Context, outputPath, text string) error {
	if outputPath == "" {
		return errors.New("output path required")
	}

	args := []string{
		"-size", "600x800",
		"xc:white",
		"-gravity", "center",
		"-pointsize", "36",
		"-annotate", "+0+0", text,
		outputPath,
	}
	cmd := commandContext(ctx, c.binary, args...) //nolint:gosec
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		detail := strings.TrimSpace(stderr.String())
		if detail == "" {
			detail = err.Error()
		}
		return fmt.Errorf("render cover: %s: %w", detail, err)
	}
	return nil
}

var _ Client = (*CLI)(nil)
