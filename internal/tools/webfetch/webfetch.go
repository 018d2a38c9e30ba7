package webfetch

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/go-shiori/go-readability"

	"github.com/ArkMaster123/arkagentic/config"
)

const maxChars = 20000

var urlPattern = regexp.MustCompile(`https?://[^\s)>"']+`)

// Tool fetches a page with a headless browser and extracts its
// readable text for the agent to use as context.
type Tool struct {
	timeout time.Duration
}

// New builds the fetch tool. Returns nil when fetching is disabled.
func New(cfg config.ToolsConfig) *Tool {
	if !cfg.FetchEnabled {
		return nil
	}
	timeout := cfg.FetchTimeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &Tool{timeout: timeout}
}

func (t *Tool) Name() string { return "web_fetch" }

// Relevant fires only when the query carries an explicit URL.
func (t *Tool) Relevant(query string) bool {
	return urlPattern.MatchString(query)
}

// Invoke fetches the first URL in the query and returns the article text.
func (t *Tool) Invoke(ctx context.Context, query string) (string, error) {
	target := urlPattern.FindString(query)
	if target == "" {
		return "", errors.New("no url in query")
	}

	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	html, err := fetchHTML(ctx, target)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", target, err)
	}

	article, err := readability.FromReader(strings.NewReader(html), mustParseURL(target))
	if err != nil {
		return "", fmt.Errorf("extract %s: %w", target, err)
	}
	text := strings.TrimSpace(article.TextContent)
	if len(text) > maxChars {
		text = text[:maxChars]
	}
	title := strings.TrimSpace(article.Title)
	return fmt.Sprintf("Content of %s (%s):\n%s", target, title, text), nil
}

func fetchHTML(ctx context.Context, target string) (string, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.UserAgent("ArkAgentic/1.0 (+contact@example.com)"),
	)
	actx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()
	bctx, cancelBrowser := chromedp.NewContext(actx)
	defer cancelBrowser()

	var html string
	err := chromedp.Run(bctx,
		chromedp.Navigate(target),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	return html, err
}

func mustParseURL(raw string) *url.URL {
	u, err := url.Parse(raw)
	if err != nil {
		return &url.URL{}
	}
	return u
}
