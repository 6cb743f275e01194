package documents

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"
)

// GotenbergRenderer converts the HTML templates to PDF through a Gotenberg
// instance.
type GotenbergRenderer struct {
	baseURL    string
	httpClient *http.Client
	templates  *HTMLTemplates
}

func NewGotenbergRenderer(baseURL string, templates *HTMLTemplates) *GotenbergRenderer {
	return &GotenbergRenderer{
		baseURL:   strings.TrimRight(baseURL, "/"),
		templates: templates,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (g *GotenbergRenderer) Name() string { return "gotenberg" }

// Ping checks if the remote Gotenberg service is available.
func (g *GotenbergRenderer) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := g.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= 400 {
		return fmt.Errorf("gotenberg returned status %d", resp.StatusCode)
	}
	return nil
}

func (g *GotenbergRenderer) Render(ctx context.Context, doc Document) ([]byte, error) {
	html, err := g.templates.Execute(doc)
	if err != nil {
		return nil, err
	}
	return g.renderHTML(ctx, html)
}

func (g *GotenbergRenderer) renderHTML(ctx context.Context, html []byte) ([]byte, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	// Gotenberg requires the entry file to be named index.html.
	part, err := writer.CreateFormFile("files", "index.html")
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(html); err != nil {
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/forms/chromium/convert/html", body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("gotenberg render failed with status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}
