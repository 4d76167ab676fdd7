package md2slides

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"github.com/alnah/go-md2slides/internal/fileutil"
)

// chromedpConverter converts HTML to PDF through the DevTools protocol with
// chromedp. The browser starts on first use and is reused across documents.
type chromedpConverter struct {
	timeout time.Duration

	mu            sync.Mutex
	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc
}

func newChromedpConverter(timeout time.Duration) *chromedpConverter {
	return &chromedpConverter{timeout: timeout}
}

// ensureBrowser lazily starts the browser.
func (c *chromedpConverter) ensureBrowser() (context.Context, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.browserCtx != nil {
		return c.browserCtx, nil
	}

	allocOpts := append(
		chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("no-first-run", true),
	)
	if bin := os.Getenv("ROD_BROWSER_BIN"); bin != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(bin))
	}
	if os.Getenv("CI") == "true" || os.Getenv("ROD_NO_SANDBOX") == "1" || os.Getenv("ROD_BROWSER_BIN") != "" {
		allocOpts = append(allocOpts, chromedp.NoSandbox)
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), allocOpts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	// Start the browser now so launch errors map to ErrBrowserConnect.
	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return nil, fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}

	c.allocCancel = allocCancel
	c.browserCtx = browserCtx
	c.browserCancel = browserCancel
	return browserCtx, nil
}

// ToPDF renders the document on slide-sized pages.
func (c *chromedpConverter) ToPDF(ctx context.Context, htmlContent string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	browserCtx, err := c.ensureBrowser()
	if err != nil {
		return nil, err
	}

	tmpPath, cleanup, err := fileutil.WriteTempHTML(htmlContent)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	timeout, err := loadTimeout(ctx, c.timeout)
	if err != nil {
		return nil, err
	}

	tabCtx, tabCancel := chromedp.NewContext(browserCtx)
	defer tabCancel()
	tabCtx, cancel := context.WithTimeout(tabCtx, timeout)
	defer cancel()

	// Tie the tab to the caller's cancellation.
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	if err := chromedp.Run(tabCtx,
		chromedp.Navigate("file://"+tmpPath),
		chromedp.WaitReady("body", chromedp.ByQuery),
	); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: %v", ErrPageLoad, err)
	}

	g := slideGeometry()
	var buf []byte
	if err := chromedp.Run(tabCtx, chromedp.ActionFunc(func(ctx context.Context) error {
		var err error
		buf, _, err = page.PrintToPDF().
			WithPaperWidth(g.Width).
			WithPaperHeight(g.Height).
			WithMarginTop(g.MarginTop).
			WithMarginRight(g.MarginRight).
			WithMarginBottom(g.MarginBottom).
			WithMarginLeft(g.MarginLeft).
			WithPrintBackground(true).
			Do(ctx)
		return err
	})); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: %v", ErrPDFGeneration, err)
	}

	return buf, nil
}

// Close stops the browser. Safe to call more than once.
func (c *chromedpConverter) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.browserCtx == nil {
		return nil
	}
	c.browserCancel()
	c.allocCancel()
	c.browserCtx = nil
	return nil
}
