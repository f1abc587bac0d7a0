package fetcher

import (
	"bytes"
	"compress/flate"
	"compress/gzip"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/cookiejar"
	"strconv"
	"strings"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/andybalholm/brotli"

	"github.com/IshaanNene/unioncorpus/internal/config"
	"github.com/IshaanNene/unioncorpus/internal/types"
)

const (
	acceptHTML = "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8"
	acceptXML  = "application/xml,text/xml;q=0.9,*/*;q=0.8"
)

// HTTPFetcher implements Fetcher over net/http. It is safe for concurrent
// use by the harvest workers.
type HTTPFetcher struct {
	client     *http.Client
	maxBody    int64
	logger     *slog.Logger
	userAgents []string
	uaIndex    atomic.Int64
}

// NewHTTPFetcher creates an HTTP fetcher sized for the harvest worker pool.
func NewHTTPFetcher(cfg *config.Config, logger *slog.Logger) (*HTTPFetcher, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}

	fc := cfg.Fetcher
	transport := &http.Transport{
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        fc.MaxIdleConns,
		MaxIdleConnsPerHost: cfg.Harvest.Concurrency,
		IdleConnTimeout:     fc.IdleConnTimeout,
		TLSHandshakeTimeout: 10 * time.Second,
		TLSClientConfig:     &tls.Config{InsecureSkipVerify: fc.TLSInsecure},

		// Decoding happens in decode so brotli is covered too.
		DisableCompression: true,
	}

	client := &http.Client{
		Transport: transport,
		Jar:       jar,
		Timeout:   cfg.Harvest.RequestTimeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if !fc.FollowRedirects {
				return http.ErrUseLastResponse
			}
			if len(via) >= fc.MaxRedirects {
				return fmt.Errorf("max redirects (%d) reached", fc.MaxRedirects)
			}
			return nil
		},
	}

	return &HTTPFetcher{
		client:     client,
		maxBody:    fc.MaxBodySize,
		logger:     logger.With("component", "http_fetcher"),
		userAgents: cfg.Harvest.UserAgents,
	}, nil
}

// Fetch GETs the request URL. Non-2xx statuses, transport failures and
// empty bodies all come back as *types.FetchError.
func (f *HTTPFetcher) Fetch(ctx context.Context, req *types.Request) (*types.Response, error) {
	rawURL := req.URLString()
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &types.FetchError{URL: rawURL, Err: err}
	}

	httpReq.Header.Set("User-Agent", f.nextUserAgent())
	httpReq.Header.Set("Accept", acceptFor(req.Tag))
	httpReq.Header.Set("Accept-Language", "en-US,en;q=0.9")
	httpReq.Header.Set("Accept-Encoding", "gzip, deflate, br")
	for key, values := range req.Headers {
		for _, v := range values {
			httpReq.Header.Set(key, v)
		}
	}

	start := time.Now()
	httpResp, err := f.client.Do(httpReq)
	if err != nil {
		return nil, &types.FetchError{URL: rawURL, Err: err, Retryable: isRetryableError(err)}
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		return nil, statusError(rawURL, httpResp)
	}

	body, err := f.readBody(httpResp, req.Tag)
	if err != nil {
		return nil, &types.FetchError{URL: rawURL, Err: err, Retryable: !errors.Is(err, errDecode)}
	}
	if len(body) == 0 {
		return nil, &types.FetchError{URL: rawURL, StatusCode: httpResp.StatusCode, Err: types.ErrEmptyResponse}
	}

	f.logger.Debug("fetch complete",
		"url", rawURL,
		"tag", req.Tag,
		"status", httpResp.StatusCode,
		"size", len(body),
		"duration", time.Since(start),
	)
	return types.NewResponse(req, httpResp, body), nil
}

// Close releases idle connections.
func (f *HTTPFetcher) Close() error {
	f.client.CloseIdleConnections()
	return nil
}

var errDecode = errors.New("decode body")

// readBody applies the size cap and content decoding. Sitemaps served as
// .xml.gz files arrive without a Content-Encoding and are gunzipped by
// their magic bytes.
func (f *HTTPFetcher) readBody(resp *http.Response, tag string) ([]byte, error) {
	var reader io.Reader = resp.Body
	if f.maxBody > 0 {
		reader = io.LimitReader(reader, f.maxBody)
	}
	reader, err := decode(resp.Header.Get("Content-Encoding"), reader)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errDecode, err)
	}
	body, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}

	if tag == types.TagSitemap && len(body) > 2 && body[0] == 0x1f && body[1] == 0x8b {
		zr, err := gzip.NewReader(bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", errDecode, err)
		}
		defer zr.Close()
		if body, err = io.ReadAll(zr); err != nil {
			return nil, fmt.Errorf("%w: %v", errDecode, err)
		}
	}
	return body, nil
}

func acceptFor(tag string) string {
	if tag == types.TagSitemap {
		return acceptXML
	}
	return acceptHTML
}

// nextUserAgent rotates through the configured User-Agents.
func (f *HTTPFetcher) nextUserAgent() string {
	if len(f.userAgents) == 0 {
		return "unioncorpus/" + config.Version
	}
	idx := f.uaIndex.Add(1) % int64(len(f.userAgents))
	return f.userAgents[idx]
}

// statusError converts a non-2xx response into a FetchError. 429 and 5xx
// are retryable; everything else is final.
func statusError(rawURL string, resp *http.Response) *types.FetchError {
	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	fe := &types.FetchError{
		URL:        rawURL,
		StatusCode: resp.StatusCode,
		Err:        fmt.Errorf("HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet))),
	}
	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		fe.Retryable = true
		fe.RetryAfter = parseRetryAfter(resp.Header.Get("Retry-After"))
	case resp.StatusCode >= 500:
		fe.Retryable = true
	}
	return fe
}

func decode(encoding string, r io.Reader) (io.Reader, error) {
	switch strings.ToLower(encoding) {
	case "gzip":
		return gzip.NewReader(r)
	case "deflate":
		return flate.NewReader(r), nil
	case "br":
		return brotli.NewReader(r), nil
	default:
		return r, nil
	}
}

// isRetryableError reports whether a transport error is worth retrying.
// Cancellation never is.
func isRetryableError(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
		return true
	}
	if errors.Is(err, syscall.ECONNRESET) || errors.Is(err, syscall.ECONNREFUSED) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// parseRetryAfter reads a Retry-After value in seconds or HTTP-date form,
// capped at two minutes. Missing or unreadable values mean 5s.
func parseRetryAfter(header string) time.Duration {
	const maxWait = 2 * time.Minute
	header = strings.TrimSpace(header)
	if secs, err := strconv.Atoi(header); err == nil {
		return min(time.Duration(secs)*time.Second, maxWait)
	}
	if t, err := http.ParseTime(header); err == nil {
		return min(max(time.Until(t), time.Second), maxWait)
	}
	return 5 * time.Second
}
