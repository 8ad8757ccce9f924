package fetch

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

// BrowserFetcher renders pages in headless Chrome before parsing them, so
// listings injected by JavaScript are visible to the selectors. The browser
// process starts lazily on the first Open and lives until Close.
type BrowserFetcher struct {
	timeout   time.Duration
	userAgent string
	logger    *zap.Logger

	once       sync.Once
	startErr   error
	allocStop  context.CancelFunc
	browserCtx context.Context
	browserStp context.CancelFunc
}

func NewBrowserFetcher(timeout time.Duration, userAgent string, logger *zap.Logger) *BrowserFetcher {
	return &BrowserFetcher{
		timeout:   timeout,
		userAgent: userAgent,
		logger:    logger,
	}
}

func (f *BrowserFetcher) start() error {
	f.once.Do(func() {
		opts := append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", true),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("no-sandbox", ""),
			chromedp.Flag("disable-dev-shm-usage", ""),
		)
		allocCtx, allocStop := chromedp.NewExecAllocator(context.Background(), opts...)
		browserCtx, browserStop := chromedp.NewContext(allocCtx)

		// Launch now so a missing Chrome binary fails the first fetch with a
		// clear error instead of timing out on every navigation.
		if err := chromedp.Run(browserCtx); err != nil {
			browserStop()
			allocStop()
			f.startErr = fmt.Errorf("start browser: %w", err)
			return
		}

		f.allocStop = allocStop
		f.browserCtx = browserCtx
		f.browserStp = browserStop
		f.logger.Info("headless browser started")
	})
	return f.startErr
}

func (f *BrowserFetcher) Open(ctx context.Context, pageURL string) (Document, error) {
	if err := f.start(); err != nil {
		return nil, err
	}

	tabCtx, closeTab := chromedp.NewContext(f.browserCtx)
	defer closeTab()
	tabCtx, cancel := context.WithTimeout(tabCtx, f.timeout)
	defer cancel()

	// Caller cancellation tears the tab down as well.
	stop := context.AfterFunc(ctx, closeTab)
	defer stop()

	var html string
	err := chromedp.Run(tabCtx,
		network.Enable(),
		network.SetExtraHTTPHeaders(network.Headers{"User-Agent": f.userAgent}),
		chromedp.Navigate(pageURL),
		chromedp.WaitVisible("body", chromedp.ByQuery),
		chromedp.OuterHTML("html", &html),
	)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = ctxErr
		}
		return nil, fmt.Errorf("render %s: %w", pageURL, err)
	}

	f.logger.Debug("page rendered", zap.String("url", pageURL))

	return ParseHTML(strings.NewReader(html))
}

// Close shuts the browser down. Open must not be called afterwards.
func (f *BrowserFetcher) Close() error {
	var err error
	if f.browserCtx != nil {
		err = chromedp.Cancel(f.browserCtx)
		f.browserStp()
	}
	if f.allocStop != nil {
		f.allocStop()
	}
	return err
}

func (f *BrowserFetcher) Name() string { return "browser" }
