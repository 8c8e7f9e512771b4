// Package pdf prints HTML documents to PDF through headless Chromium.
package pdf

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

const defaultTimeout = 15 * time.Second

type Options struct {
	// ChromiumPath overrides the browser binary; empty uses chromedp's lookup.
	ChromiumPath string
	Timeout      time.Duration
}

// ChromiumRenderer prints HTML to A4 PDF. A browser is started per call.
type ChromiumRenderer struct {
	opts Options
}

func NewChromiumRenderer(opts Options) *ChromiumRenderer {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	return &ChromiumRenderer{opts: opts}
}

// allocatorOptions builds the exec allocator flags for a headless run.
func (r *ChromiumRenderer) allocatorOptions() []chromedp.ExecAllocatorOption {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
	)
	if r.opts.ChromiumPath != "" {
		opts = append(opts, chromedp.ExecPath(r.opts.ChromiumPath))
	}
	return opts
}

// DataURL embeds an HTML document in a data: URL Chromium can navigate to.
func DataURL(html []byte) string {
	return "data:text/html;charset=utf-8," + url.PathEscape(string(html))
}

// Render returns the PDF bytes for html. When Chromium is missing or the
// timeout passes an error is returned and nothing is retried.
func (r *ChromiumRenderer) Render(ctx context.Context, html []byte) ([]byte, error) {
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, r.allocatorOptions()...)
	defer cancelAlloc()

	runCtx, cancelRun := chromedp.NewContext(allocCtx)
	defer cancelRun()
	runCtx, cancelTimeout := context.WithTimeout(runCtx, r.opts.Timeout)
	defer cancelTimeout()

	var buf []byte
	err := chromedp.Run(runCtx,
		chromedp.Navigate(DataURL(html)),
		chromedp.ActionFunc(func(ctx context.Context) error {
			out, _, err := page.PrintToPDF().
				WithPrintBackground(true).
				WithPaperWidth(8.27).
				WithPaperHeight(11.69).
				Do(ctx)
			if err != nil {
				return err
			}
			buf = out
			return nil
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("chromedp run failed: %w", err)
	}
	return buf, nil
}
