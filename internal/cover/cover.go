// Package cover produces a simple cover image for the generated EPUB.
package cover

import (
	"context"
	"log/slog"
	"path/filepath"

	"arxiv2epub/internal/logging"
	"arxiv2epub/internal/services/magick"
)

// Generator renders covers via ImageMagick. A failed render is reported to
// the caller as an empty path, never as an error: the EPUB is still produced
// without a cover.
type Generator struct {
	client magick.Client
	logger *slog.Logger
}

// NewGenerator constructs a Generator. client may be nil to disable
// generation entirely.
func NewGenerator(client magick.Client, logger *slog.Logger) *Generator {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Generator{client: client, logger: logger}
}

// Generate renders a cover image into dir and returns its path, or "" when
// no cover could be produced.
func (g *Generator) Generate(ctx context.Context, dir, arxivID, title string) string {
	if g.client == nil {
		return ""
	}

	text := "arXiv:" + arxivID
	if title != "" {
		text = title + "\n\narXiv:" + arxivID
	}

	path := filepath.Join(dir, "cover.png")
	if err := g.client.Render(ctx, path, text); err != nil {
		g.logger.Warn("cover rendering failed, continuing without cover",
			logging.String("id", arxivID),
			logging.Error(err),
		)
		return ""
	}
	g.logger.Debug("cover image rendered", logging.String("path", path))
	return path
}
