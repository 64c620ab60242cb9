package invoice

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"inventory-service/internal/models"
	"inventory-service/internal/util"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

// Renderer turns a finalized order into a PDF invoice on disk. Orders
// never depend on it succeeding.
type Renderer struct {
	dir        string
	baseURL    string
	chromePath string
	logger     *zap.Logger
}

// NewRenderer creates a renderer writing into dir. The directory is
// created if missing.
func NewRenderer(dir, baseURL string) (*Renderer, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create invoice dir: %w", err)
	}
	return &Renderer{
		dir:        dir,
		baseURL:    baseURL,
		chromePath: detectChromePath(),
		logger:     util.GetLogger(),
	}, nil
}

// detectChromePath finds a Chrome/Chromium executable, checking
// CHROME_PATH first, then common installation paths.
func detectChromePath() string {
	if chromePath := os.Getenv("CHROME_PATH"); chromePath != "" {
		if _, err := os.Stat(chromePath); err == nil {
			return chromePath
		}
	}

	paths := []string{
		"/usr/bin/chromium",
		"/usr/bin/chromium-browser",
		"/usr/bin/google-chrome",
		"/usr/bin/google-chrome-stable",
		"/snap/bin/chromium",
	}
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// Render writes the invoice PDF for an order and returns its public
// URL.
func (r *Renderer) Render(ctx context.Context, ev *models.OrderCreatedEvent) (string, error) {
	start := time.Now()
	defer func() {
		util.InvoiceRenderLatency.Observe(time.Since(start).Seconds())
	}()

	html, err := RenderHTML(ev)
	if err != nil {
		return "", fmt.Errorf("render invoice html: %w", err)
	}

	pdf, err := r.printToPDF(ctx, html)
	if err != nil {
		return "", fmt.Errorf("print invoice pdf: %w", err)
	}

	filename := fmt.Sprintf("order_%d.pdf", ev.OrderID)
	path := filepath.Join(r.dir, filename)
	if err := os.WriteFile(path, pdf, 0o644); err != nil {
		return "", fmt.Errorf("write invoice file: %w", err)
	}

	r.logger.Info("Invoice generated",
		zap.Int64("order_id", ev.OrderID),
		zap.String("path", path))

	return fmt.Sprintf("%s/%s", r.baseURL, filename), nil
}

// printToPDF drives headless Chrome over the rendered HTML.
func (r *Renderer) printToPDF(ctx context.Context, html string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.NoSandbox, // Required for running in containers
	)
	if r.chromePath != "" {
		opts = append(opts, chromedp.ExecPath(r.chromePath))
	}
	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	defer allocCancel()

	chromedpCtx, chromedpCancel := chromedp.NewContext(allocCtx)
	defer chromedpCancel()

	dataURL := "data:text/html," + url.PathEscape(html)

	var pdf []byte
	err := chromedp.Run(chromedpCtx,
		chromedp.Navigate(dataURL),
		chromedp.WaitReady("body"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			// A4 portrait, margins handled by the template's CSS.
			pdf, _, err = page.PrintToPDF().
				WithPrintBackground(true).
				WithPaperWidth(8.27).
				WithPaperHeight(11.69).
				WithMarginTop(0.4).
				WithMarginBottom(0.4).
				WithMarginLeft(0.4).
				WithMarginRight(0.4).
				Do(ctx)
			return err
		}),
	)
	if err != nil {
		return nil, err
	}
	return pdf, nil
}
