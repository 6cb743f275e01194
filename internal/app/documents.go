package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/voyageos/voyageos/internal/documents"
)

// NewDocumentRenderer returns the renderer selected by PDF_RENDERER. An
// unreachable Gotenberg is logged at startup, not treated as fatal.
func NewDocumentRenderer(ctx context.Context, cfg *Config, logger *slog.Logger) (documents.Renderer, error) {
	if cfg.PDFRenderer != "gotenberg" {
		return documents.NewLocalRenderer(cfg.Currency), nil
	}
	templates, err := documents.NewHTMLTemplates(cfg.Currency)
	if err != nil {
		return nil, fmt.Errorf("load document templates: %w", err)
	}
	renderer := documents.NewGotenbergRenderer(cfg.GotenbergURL, templates)
	if err := renderer.Ping(ctx); err != nil {
		logger.Warn("gotenberg not reachable", slog.String("url", cfg.GotenbergURL), slog.Any("error", err))
	}
	return renderer, nil
}

// ArchiveConfig maps the ARCHIVE_* settings.
func (c *Config) ArchiveConfig() documents.ArchiveConfig {
	return documents.ArchiveConfig{
		Bucket:          c.ArchiveBucket,
		Endpoint:        c.ArchiveEndpoint,
		Region:          c.ArchiveRegion,
		AccessKeyID:     c.ArchiveAccessKeyID,
		SecretAccessKey: c.ArchiveSecretAccessKey,
	}
}
