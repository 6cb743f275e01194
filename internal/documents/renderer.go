package documents

import (
	"context"
	"fmt"
	"log/slog"
)

// Renderer turns a document payload into PDF bytes.
type Renderer interface {
	Name() string
	Render(ctx context.Context, doc Document) ([]byte, error)
}

// RenderRecorder observes completed renders.
type RenderRecorder interface {
	ObserveDocument(kind, renderer string)
}

// Archiver receives a copy of every rendered customer document.
type Archiver interface {
	EnqueueArchive(ctx context.Context, key string, pdf []byte) error
}

// Generator wraps a Renderer with metrics and optional archiving.
type Generator struct {
	renderer Renderer
	recorder RenderRecorder
	archiver Archiver
	logger   *slog.Logger
}

type GeneratorOption func(*Generator)

func WithRecorder(r RenderRecorder) GeneratorOption {
	return func(g *Generator) { g.recorder = r }
}

func WithArchiver(a Archiver) GeneratorOption {
	return func(g *Generator) { g.archiver = a }
}

func WithLogger(l *slog.Logger) GeneratorOption {
	return func(g *Generator) { g.logger = l }
}

func NewGenerator(renderer Renderer, opts ...GeneratorOption) *Generator {
	g := &Generator{renderer: renderer, logger: slog.Default()}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Render produces the PDF. Archive failures are logged and never fail the
// request; the profit sheet is internal and is not archived.
func (g *Generator) Render(ctx context.Context, doc Document) ([]byte, error) {
	pdf, err := g.renderer.Render(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", doc.Kind(), err)
	}
	if g.recorder != nil {
		g.recorder.ObserveDocument(string(doc.Kind()), g.renderer.Name())
	}
	if g.archiver != nil && doc.Kind() != KindProfitSheet {
		key := ArchiveKey(doc)
		if err := g.archiver.EnqueueArchive(ctx, key, pdf); err != nil {
			g.logger.Warn("archive enqueue failed", slog.String("key", key), slog.Any("error", err))
		}
	}
	return pdf, nil
}

// ArchiveKey places documents under a folder per kind.
func ArchiveKey(doc Document) string {
	return string(doc.Kind()) + "/" + doc.Filename()
}
