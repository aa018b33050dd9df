package justel

import (
	"context"
	"fmt"
	"html"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// PDFRenderer prints a local HTML file to PDF. A non-empty stamp is shown
// in the page footer next to the page number.
type PDFRenderer interface {
	RenderFile(ctx context.Context, path, stamp string) ([]byte, error)
	Close() error
}

// Compile-time interface check
var _ PDFRenderer = (*rodRenderer)(nil)

// PDF page dimensions in inches (A4).
const (
	paperWidthInches       = 8.27
	paperHeightInches      = 11.69
	marginInches           = 0.5
	marginBottomWithFooter = 0.75 // Extra space for footer
)

const defaultPageTimeout = 30 * time.Second

// Footer template parts. Chrome fills the pageNumber and totalPages classes.
const (
	footerOpen  = `<div style="font-size: 9px; font-family: Georgia, serif; color: #888; width: 100%; text-align: center; padding: 0 0.5in;">`
	footerPages = `<span class="pageNumber"></span>/<span class="totalPages"></span>`
	footerClose = `</div>`
)

// footerTemplate shows "page/total", preceded by the escaped stamp.
func footerTemplate(stamp string) string {
	if stamp == "" {
		return footerOpen + footerPages + footerClose
	}
	return footerOpen + "<span>Aperçu du " + html.EscapeString(stamp) + " · </span>" + footerPages + footerClose
}

// rodRenderer implements PDFRenderer using go-rod.
// Rod downloads Chromium on first run if no browser is found.
type rodRenderer struct {
	launcher *launcher.Launcher
	browser  *rod.Browser
	timeout  time.Duration
}

func newRodRenderer(timeout time.Duration) *rodRenderer {
	if timeout <= 0 {
		timeout = defaultPageTimeout
	}
	return &rodRenderer{timeout: timeout}
}

// ensureBrowser lazily launches and connects to the browser.
func (r *rodRenderer) ensureBrowser() error {
	if r.browser != nil {
		return nil
	}

	l := launcher.New()

	// Pre-installed browser (Docker/containerized environments)
	if bin := os.Getenv("ROD_BROWSER_BIN"); bin != "" {
		l = l.Bin(bin)
	}

	// NoSandbox required for CI and containers
	if os.Getenv("CI") == "true" || os.Getenv("ROD_BROWSER_BIN") != "" || os.Getenv("ROD_NO_SANDBOX") == "1" {
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
		r.kill()
		return fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}
	return nil
}

// Close closes the browser and kills its process group.
func (r *rodRenderer) Close() error {
	var err error
	if r.browser != nil {
		err = r.browser.Close()
		r.browser = nil
	}
	r.kill()
	return err
}

func (r *rodRenderer) kill() {
	if r.launcher == nil {
		return
	}
	if pid := r.launcher.PID(); pid > 0 {
		_ = killTree(pid) // launcher.Kill below still stops the main process
	}
	r.launcher.Kill()
	r.launcher.Cleanup()
	r.launcher = nil
}

// RenderFile opens path in headless Chrome and prints it to PDF.
func (r *rodRenderer) RenderFile(ctx context.Context, path, stamp string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageCreate, err)
	}

	if err := r.ensureBrowser(); err != nil {
		return nil, err
	}

	page, err := r.browser.Page(proto.TargetCreateTarget{URL: "file://" + filepath.ToSlash(abs)})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageCreate, err)
	}
	defer page.Close()

	timeout, err := pageTimeout(ctx, r.timeout)
	if err != nil {
		return nil, err
	}

	if err := page.Timeout(timeout).WaitLoad(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageLoad, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	reader, err := page.PDF(printOptions(stamp))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPDFGeneration, err)
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("%w: reading PDF stream: %v", ErrPDFGeneration, err)
	}
	return data, nil
}

// pageTimeout bounds a page load by d, or by the time left before the
// context deadline when that comes first.
func pageTimeout(ctx context.Context, d time.Duration) (time.Duration, error) {
	deadline, ok := ctx.Deadline()
	if !ok {
		return d, nil
	}
	left := time.Until(deadline)
	if left <= 0 {
		return 0, context.DeadlineExceeded
	}
	return min(d, left), nil
}

// printOptions returns A4 settings with 0.5in margins and a page-number footer.
func printOptions(stamp string) *proto.PagePrintToPDF {
	return &proto.PagePrintToPDF{
		PaperWidth:          floatPtr(paperWidthInches),
		PaperHeight:         floatPtr(paperHeightInches),
		MarginTop:           floatPtr(marginInches),
		MarginBottom:        floatPtr(marginBottomWithFooter),
		MarginLeft:          floatPtr(marginInches),
		MarginRight:         floatPtr(marginInches),
		PrintBackground:     true,
		DisplayHeaderFooter: true,
		HeaderTemplate:      "<span></span>", // Empty header
		FooterTemplate:      footerTemplate(stamp),
	}
}

func floatPtr(v float64) *float64 {
	return &v
}
