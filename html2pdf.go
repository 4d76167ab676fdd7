package md2slides

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/alnah/go-md2slides/internal/fileutil"
	"github.com/alnah/go-md2slides/internal/process"
)

// pdfConverter abstracts HTML to PDF conversion to allow different backends.
type pdfConverter interface {
	ToPDF(ctx context.Context, htmlContent string) ([]byte, error)
	Close() error
}

// pdfRenderer abstracts PDF rendering from an HTML file to enable testing without a browser.
type pdfRenderer interface {
	RenderFromFile(ctx context.Context, filePath string) ([]byte, error)
}

// Slide page geometry in centimeters (16:9, 13.33 x 7.5 inches).
const (
	slideWidthCM   = 33.87
	slideHeightCM  = 19.05
	marginTopCM    = 0.5
	marginOtherCM  = 1.0
	centimeterInch = 2.54
)

// pageGeometry holds the printed page layout in inches, the unit of the
// DevTools protocol.
type pageGeometry struct {
	Width, Height                                    float64
	MarginTop, MarginRight, MarginBottom, MarginLeft float64
}

// slideGeometry returns the fixed slide page layout.
func slideGeometry() pageGeometry {
	return pageGeometry{
		Width:        cmToInches(slideWidthCM),
		Height:       cmToInches(slideHeightCM),
		MarginTop:    cmToInches(marginTopCM),
		MarginRight:  cmToInches(marginOtherCM),
		MarginBottom: cmToInches(marginOtherCM),
		MarginLeft:   cmToInches(marginOtherCM),
	}
}

func cmToInches(cm float64) float64 {
	return cm / centimeterInch
}

// loadTimeout returns the time left before ctx expires, or fallback when ctx
// has no deadline.
func loadTimeout(ctx context.Context, fallback time.Duration) (time.Duration, error) {
	deadline, ok := ctx.Deadline()
	if !ok {
		return fallback, nil
	}
	timeout := time.Until(deadline)
	if timeout <= 0 {
		return 0, context.DeadlineExceeded
	}
	return timeout, nil
}

// rodRenderer implements pdfRenderer using go-rod.
// Rod automatically downloads Chromium on first run if not found.
type rodRenderer struct {
	browser  *rod.Browser
	launcher *launcher.Launcher
	timeout  time.Duration
}

// newRodRenderer creates a rodRenderer with the given timeout.
func newRodRenderer(timeout time.Duration) *rodRenderer {
	return &rodRenderer{timeout: timeout}
}

// ensureBrowser lazily connects to the browser.
func (r *rodRenderer) ensureBrowser() error {
	if r.browser != nil {
		return nil
	}

	l := launcher.New()

	// Use pre-installed browser if specified (Docker/containerized environments)
	if bin := os.Getenv("ROD_BROWSER_BIN"); bin != "" {
		l = l.Bin(bin)
	}

	// NoSandbox required for CI and containerized environments
	if os.Getenv("CI") == "true" || os.Getenv("ROD_NO_SANDBOX") == "1" || os.Getenv("ROD_BROWSER_BIN") != "" {
		l = l.NoSandbox(true)
	}
	u, err := l.Launch()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}
	r.launcher = l

	r.browser = rod.New().ControlURL(u)
	if err := r.browser.Connect(); err != nil {
		r.browser = nil
		r.killLauncher()
		return fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}
	return nil
}

// Close releases browser resources, including Chrome child processes.
func (r *rodRenderer) Close() error {
	var err error
	if r.browser != nil {
		err = r.browser.Close()
		r.browser = nil
	}
	r.killLauncher()
	return err
}

func (r *rodRenderer) killLauncher() {
	if r.launcher == nil {
		return
	}
	if pid := r.launcher.PID(); pid > 0 {
		process.KillProcessGroup(pid)
	}
	r.launcher.Kill()
	r.launcher = nil
}

// RenderFromFile opens a local HTML file in headless Chrome and renders it to PDF.
// Returns explicit errors instead of panicking when browser operations fail.
func (r *rodRenderer) RenderFromFile(ctx context.Context, filePath string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := r.ensureBrowser(); err != nil {
		return nil, err
	}

	page, err := r.browser.Page(proto.TargetCreateTarget{URL: "file://" + filePath})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageCreate, err)
	}
	defer page.Close()

	timeout, err := loadTimeout(ctx, r.timeout)
	if err != nil {
		return nil, err
	}

	if err := page.Timeout(timeout).WaitLoad(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageLoad, err)
	}

	// KaTeX typesets on DOMContentLoaded; wait for the DOM to settle.
	if err := page.Timeout(timeout).WaitDOMStable(300*time.Millisecond, 0); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageLoad, err)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	reader, err := page.PDF(buildPDFOptions(slideGeometry()))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPDFGeneration, err)
	}

	pdfBuf, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("%w: reading PDF stream: %v", ErrPDFGeneration, err)
	}

	return pdfBuf, nil
}

// buildPDFOptions constructs proto.PagePrintToPDF for the given geometry.
func buildPDFOptions(g pageGeometry) *proto.PagePrintToPDF {
	return &proto.PagePrintToPDF{
		PaperWidth:      floatPtr(g.Width),
		PaperHeight:     floatPtr(g.Height),
		MarginTop:       floatPtr(g.MarginTop),
		MarginBottom:    floatPtr(g.MarginBottom),
		MarginLeft:      floatPtr(g.MarginLeft),
		MarginRight:     floatPtr(g.MarginRight),
		PrintBackground: true,
	}
}

// floatPtr returns a pointer to a float64 value.
func floatPtr(v float64) *float64 {
	return &v
}

// rodConverter converts HTML to PDF using headless Chrome via go-rod.
type rodConverter struct {
	renderer pdfRenderer
	closer   io.Closer
}

// newRodConverter creates a rodConverter with production renderer.
func newRodConverter(timeout time.Duration) *rodConverter {
	r := newRodRenderer(timeout)
	return &rodConverter{renderer: r, closer: r}
}

// ToPDF writes the document to a temp file, so relative URLs and file://
// images resolve, and renders it on slide-sized pages.
func (c *rodConverter) ToPDF(ctx context.Context, htmlContent string) ([]byte, error) {
	tmpPath, cleanup, err := fileutil.WriteTempHTML(htmlContent)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	return c.renderer.RenderFromFile(ctx, tmpPath)
}

// Close releases browser resources.
func (c *rodConverter) Close() error {
	if c.closer != nil {
		return c.closer.Close()
	}
	return nil
}
