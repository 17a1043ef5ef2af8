package scraper

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"

	"investorportal/internal/analytics"
	"investorportal/internal/utils"
)

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) Chrome/120.0.0.0 Safari/537.36"

// Scraper collects index history from a web page with a headless browser.
// It is the fallback price source when no index-data API is configured.
type Scraper struct {
	logger      *utils.AppLogger
	ctx         context.Context
	cancel      context.CancelFunc
	config      utils.ScraperConfig
	perfTracker *utils.PerformanceTracker
}

func NewScraper(ctx context.Context, logger *utils.AppLogger, config utils.ScraperConfig, perf *utils.PerformanceTracker) *Scraper {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("log-level", "3"),
		chromedp.Flag("headless", config.Headless),
		chromedp.Flag("enable-logging", false),
		chromedp.Flag("silent-debugger", true),
		chromedp.Flag("suppress-cookie-errors", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-setuid-sandbox", true),
		chromedp.Flag("ignore-certificate-errors", true),
		chromedp.Flag("window-size", "1920,1080"),
	)

	allocCtx, cancel := chromedp.NewExecAllocator(ctx, opts...)

	return &Scraper{
		logger:      logger,
		ctx:         allocCtx,
		cancel:      cancel,
		config:      config,
		perfTracker: perf,
	}
}

// Name identifies the scraper as a price source.
func (s *Scraper) Name() string { return "scrape" }

// History scrapes the history page of symbol and returns the levels between
// from and to, inclusive.
func (s *Scraper) History(ctx context.Context, symbol string, from, to time.Time) ([]analytics.BenchmarkRecord, error) {
	defer s.perfTracker.Track("scrape_index_history", time.Now())

	rows, err := s.ScrapeIndexHistory(ctx, symbol)
	if err != nil {
		return nil, err
	}
	records, skipped := ParseRows(rows)
	if skipped > 0 {
		s.logger.Debug("Skipped %d unparseable rows for %s", skipped, symbol)
	}
	return analytics.SortBenchmark(Between(records, from, to)), nil
}

// ScrapeIndexHistory loads the history page of symbol and returns the raw
// table rows it shows.
func (s *Scraper) ScrapeIndexHistory(ctx context.Context, symbol string) ([]Row, error) {
	url := fmt.Sprintf(s.config.URLTemplate, symbol)
	s.logger.Info("Scraping index history for %s", symbol)

	timeout := time.Duration(s.config.Timeout) * time.Second
	browserCtx, cancel := chromedp.NewContext(s.ctx,
		chromedp.WithLogf(func(format string, args ...interface{}) {
			if !strings.Contains(strings.ToLower(fmt.Sprintf(format, args...)), "cookie") {
				s.logger.Debug(format, args...)
			}
		}),
	)
	defer cancel()
	browserCtx, cancelTimeout := context.WithTimeout(browserCtx, timeout)
	defer cancelTimeout()

	// Stop when the caller gives up
	stop := context.AfterFunc(ctx, cancelTimeout)
	defer stop()

	var navigationError error
	for attempts := 0; attempts < 3; attempts++ {
		err := chromedp.Run(browserCtx,
			emulation.SetUserAgentOverride(userAgent),
			chromedp.Navigate(url),
			chromedp.WaitReady("body", chromedp.ByQuery),
		)
		if err == nil {
			navigationError = nil
			break
		}
		navigationError = err
		if browserCtx.Err() != nil {
			break
		}
		time.Sleep(2 * time.Second)
	}
	if navigationError != nil {
		return nil, fmt.Errorf("failed to navigate to %s after retries: %w", url, navigationError)
	}

	var rows []Row
	err := chromedp.Run(browserCtx,
		chromedp.WaitVisible(s.config.RowSelector, chromedp.ByQuery),
		chromedp.Evaluate(extractScript(s.config.RowSelector, s.config.DateColumn, s.config.CloseColumn), &rows),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to extract %s history: %w", symbol, err)
	}

	s.logger.Debug("Scraped %d rows for %s", len(rows), symbol)
	return rows, nil
}

// extractScript returns the page script that reads the date and close
// columns of every matching row.
func extractScript(selector string, dateColumn, closeColumn int) string {
	return fmt.Sprintf(`
		(() => {
			const out = [];
			for (const row of document.querySelectorAll(%q)) {
				const cells = row.querySelectorAll("td");
				if (cells.length <= Math.max(%d, %d)) continue;
				out.push({date: cells[%d].textContent.trim(), close: cells[%d].textContent.trim()});
			}
			return out;
		})()
	`, selector, dateColumn, closeColumn, dateColumn, closeColumn)
}

func (s *Scraper) Close() {
	if s.cancel != nil {
		s.cancel()
		s.logger.Info("Browser closed")
	}
}

// PreflightCheck verifies the configuration and that a browser can start.
func (s *Scraper) PreflightCheck() error {
	checks := []struct {
		name  string
		check func() error
	}{
		{"Config Validation", s.validateConfig},
		{"Browser Launch", s.testBrowserLaunch},
		{"Network Settings", s.testNetworkSettings},
	}

	for _, c := range checks {
		s.logger.Debug("Running preflight check: %s", c.name)
		if err := c.check(); err != nil {
			return fmt.Errorf("%s check failed: %w", c.name, err)
		}
		s.logger.Debug("%s check passed", c.name)
	}

	return nil
}

func (s *Scraper) validateConfig() error {
	if s.config.Timeout <= 0 {
		return fmt.Errorf("invalid timeout value")
	}
	if !strings.Contains(s.config.URLTemplate, "%s") {
		return fmt.Errorf("url template %q has no symbol placeholder", s.config.URLTemplate)
	}
	if s.config.RowSelector == "" {
		return fmt.Errorf("row selector is empty")
	}
	return nil
}

func (s *Scraper) testBrowserLaunch() error {
	ctx, cancel := chromedp.NewContext(s.ctx)
	defer cancel()
	ctx, cancelTimeout := context.WithTimeout(ctx, 10*time.Second)
	defer cancelTimeout()

	return chromedp.Run(ctx, chromedp.Navigate("about:blank"))
}

func (s *Scraper) testNetworkSettings() error {
	ctx, cancel := chromedp.NewContext(s.ctx)
	defer cancel()
	ctx, cancelTimeout := context.WithTimeout(ctx, 10*time.Second)
	defer cancelTimeout()

	return chromedp.Run(ctx,
		network.Enable(),
		network.SetCacheDisabled(true),
		emulation.SetUserAgentOverride(userAgent),
	)
}
