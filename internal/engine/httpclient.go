package engine

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"

	"golang.org/x/time/rate"
)

// Outbound YouTube request throttle. nil limiter means unlimited.
var (
	limiterMu sync.RWMutex
	limiter   *rate.Limiter
)

func initLimiter(rps float64) {
	limiterMu.Lock()
	defer limiterMu.Unlock()
	if rps <= 0 {
		limiter = nil
		return
	}
	burst := int(rps)
	if burst < 1 {
		burst = 1
	}
	limiter = rate.NewLimiter(rate.Limit(rps), burst)
}

// WaitRate blocks until the outbound limiter admits one request or ctx is done.
func WaitRate(ctx context.Context) error {
	limiterMu.RLock()
	l := limiter
	limiterMu.RUnlock()
	if l == nil {
		return nil
	}
	return l.Wait(ctx)
}

// DoRequest throttles, then executes the request built by newReq with stealth retry.
// newReq is called once per attempt so request bodies are never reused.
func DoRequest(ctx context.Context, client *http.Client, newReq func() (*http.Request, error)) (*http.Response, error) {
	if client == nil {
		client = cfg.HTTPClient
	}
	if err := WaitRate(ctx); err != nil {
		return nil, err
	}
	return RetryHTTP(ctx, DefaultRetryConfig, func() (*http.Response, error) {
		req, err := newReq()
		if err != nil {
			return nil, err
		}
		return client.Do(req)
	})
}

// ReadLimited reads at most limit bytes of a response body.
func ReadLimited(r io.Reader, limit int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, limit))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return data, nil
}

// StatusSnippet formats a non-2xx response as "HTTP <code>: <first bytes of body>".
func StatusSnippet(resp *http.Response) string {
	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
	return fmt.Sprintf("HTTP %d: %s", resp.StatusCode, snippet)
}
