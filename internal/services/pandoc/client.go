package pandoc

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"path/filepath"
	"strings"

	"arxiv2epub/internal/services"
)

var commandContext = exec.CommandContext

// Request describes one conversion.
type Request struct {
	// InputPath is the root TeX document.
	InputPath string
	// OutputPath is the EPUB destination.
	OutputPath string
	// ResourceDir is where pandoc resolves relative includes and images;
	// usually the directory containing InputPath.
	ResourceDir string
	// TOC includes a table of contents in the EPUB.
	TOC bool
	// CoverImage, when non-empty, is embedded as the EPUB cover.
	CoverImage string
	// Title and Authors populate the EPUB metadata when known.
	Title   string
	Authors []string
}

// Client defines document conversion behaviour.
type Client interface {
	Convert(ctx context.Context, req Request) error
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

// WithMarkdownFallback controls the latex -> markdown -> epub retry when a
// direct conversion fails.
func WithMarkdownFallback(enabled bool) Option {
	return func(c *CLI) {
		c.markdownFallback = enabled
	}
}

// CLI wraps the pandoc command-line converter.
type CLI struct {
	binary           string
	markdownFallback bool
}

// NewCLI constructs a CLI client using defaults.
func NewCLI(opts ...Option) *CLI {
	cli := &CLI{binary: "pandoc", markdownFallback: true}
	for _, opt := range opts {
		opt(cli)
	}
	return cli
}

// Convert runs pandoc on the request. A non-zero exit triggers the markdown
// fallback when enabled; the returned error carries pandoc's diagnostics.
func (c *CLI) Convert(ctx context.Context, req Request) error {
	if req.InputPath == "" {
		return errors.New("input path required")
	}
	if req.OutputPath == "" {
		return errors.New("output path required")
	}

	directArgs := append([]string{"-s", req.InputPath, "-o", req.OutputPath, "-f", "latex", "-t", "epub"},
		c.commonArgs(req)...)
	directErr := c.run(ctx, req.ResourceDir, directArgs)
	if directErr == nil {
		return nil
	}
	if !c.markdownFallback {
		return directErr
	}

	mdPath := strings.TrimSuffix(req.InputPath, filepath.Ext(req.InputPath)) + ".md"
	if err := c.run(ctx, req.ResourceDir, []string{"-s", req.InputPath, "-o", mdPath, "-f", "latex", "-t", "markdown"}); err != nil {
		return directErr
	}
	epubArgs := append([]string{"-s", mdPath, "-o", req.OutputPath, "-f", "markdown", "-t", "epub"},
		c.commonArgs(req)...)
	if err := c.run(ctx, req.ResourceDir, epubArgs); err != nil {
		return directErr
	}
	return nil
}

func (c *CLI) commonArgs(req Request) []string {
	var args []string
	if req.TOC {
		args = append(args, "--toc")
	}
	if req.ResourceDir != "" {
		args = append(args, "--resource-path="+req.ResourceDir)
	}
	if req.CoverImage != "" {
		args = append(args, "--epub-cover-image="+req.CoverImage)
	}
	if req.Title != "" {
		args = append(args, "--metadata=title:"+req.Title)
	}
	for _, author := range req.Authors {
		args = append(args, "--metadata=author:"+author)
	}
	return args
}

func (c *CLI) run(ctx context.Context, dir string, args []string) error {
	cmd := commandContext(ctx, c.binary, args...) //nolint:gosec
	if dir != "" {
		cmd.Dir = dir
	}
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		detail := strings.TrimSpace(stderr.String())
		if detail == "" {
			detail = err.Error()
		}
		return services.Wrap(services.ErrConversion, "convert", "pandoc", truncate(detail, 2000), err)
	}
	return nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + " [...]"
}

var _ Client = (*CLI)(nil)
