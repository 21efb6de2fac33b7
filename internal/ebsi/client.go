package ebsi

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/junepark678/ebsi-csat/pkg/logger"
	"golang.org/x/time/rate"
)

const (
	userAgent    = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/140.0.0.0 Safari/537.36"
	contentType  = "application/x-www-form-urlencoded; charset=UTF-8"
	maxBodyBytes = 10 * 1024 * 1024
)

type Config struct {
	SearchURL        string
	SearchReferer    string
	StatsURL         string
	StatsReferer     string
	WorksheetURL     string
	WorksheetReferer string

	WorksheetSubjectID   string
	WorksheetPaperTypeID string

	Cookie    string
	Timeout   time.Duration
	RateLimit float64
}

type Client struct {
	cfg     Config
	http    *http.Client
	limiter *rate.Limiter
}

func New(cfg Config) *Client {
	jar, _ := cookiejar.New(nil)

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if cfg.RateLimit > 0 {
		burst := int(cfg.RateLimit)
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}

	return &Client{
		cfg: cfg,
		http: &http.Client{
			Timeout: timeout,
			Jar:     jar,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		limiter: limiter,
	}
}

// SearchPapers returns the raw HTML fragment of the previous-paper list.
func (c *Client) SearchPapers(ctx context.Context, q PaperQuery) (string, error) {
	body, err := c.post(ctx, c.cfg.SearchURL, c.cfg.SearchReferer, q.Values())
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// PaperStats returns the raw JSON statistics payload of one exam.
func (c *Client) PaperStats(ctx context.Context, examID string) ([]byte, error) {
	form := url.Values{
		"suffixSite": {""},
		"isInsite":   {"Y"},
		"site":       {"HSC"},
		"isMoc":      {"1"},
		"paperId":    {examID},
	}
	return c.post(ctx, c.cfg.StatsURL, c.cfg.StatsReferer, form)
}

// CreatePaper asks the remote site to compile itemIDs into a worksheet.
func (c *Client) CreatePaper(ctx context.Context, title string, itemIDs []string) error {
	form := url.Values{
		"title":       {title},
		"desc":        {""},
		"subjectId":   {c.cfg.WorksheetSubjectID},
		"itemList":    {strings.Join(itemIDs, ",")},
		"paperTypeId": {c.cfg.WorksheetPaperTypeID},
	}
	_, err := c.post(ctx, c.cfg.WorksheetURL, c.cfg.WorksheetReferer, form)
	return err
}

func (c *Client) post(ctx context.Context, endpoint, referer string, form url.Values) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("X-Requested-With", "XMLHttpRequest")
	req.Header.Set("Accept", "*/*")
	req.Header.Set("Accept-Language", "ko-KR,ko;q=0.9,en-US;q=0.8,en;q=0.7")
	if referer != "" {
		req.Header.Set("Referer", referer)
	}
	if c.cfg.Cookie != "" {
		req.Header.Set("Cookie", c.cfg.Cookie)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	logger.Log.Debug().
		Str("url", endpoint).
		Int("status", resp.StatusCode).
		Int("body_len", len(body)).
		Int64("time_ms", time.Since(start).Milliseconds()).
		Msg("remote call completed")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{URL: endpoint, StatusCode: resp.StatusCode, Status: resp.Status}
	}

	return body, nil
}
