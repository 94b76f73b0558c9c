package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"time"

	"github.com/AngelCh415/ngram-report/internal/utils"
)

var ErrFetch = errors.New("fetch report")

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

func NewHTTPClient(timeout time.Duration) HTTPClient {
	return &http.Client{Timeout: timeout}
}

// Fetcher downloads report files, retrying transport errors and 5xx answers.
type Fetcher struct {
	c        HTTPClient
	backoff  utils.Backoff
	maxBytes int64
}

func NewFetcher(c HTTPClient, maxBytes int64) *Fetcher {
	return &Fetcher{c: c, backoff: utils.NewBackoff(100*time.Millisecond, 2), maxBytes: maxBytes}
}

// Fetch returns the body and a file name derived from the URL path.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) ([]byte, string, error) {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, "", fmt.Errorf("%w: invalid url %q", ErrFetch, rawURL)
	}
	var body []byte
	err = f.backoff.Do(ctx, func(int) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
		if err != nil {
			return utils.Permanent(err)
		}
		resp, err := f.c.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			b, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
			err := fmt.Errorf("non-2xx: %d body=%s", resp.StatusCode, string(b))
			if resp.StatusCode < 500 {
				return utils.Permanent(err)
			}
			return err
		}
		lr := io.Reader(resp.Body)
		if f.maxBytes > 0 {
			lr = io.LimitReader(resp.Body, f.maxBytes+1)
		}
		b, err := io.ReadAll(lr)
		if err != nil {
			return err
		}
		if f.maxBytes > 0 && int64(len(b)) > f.maxBytes {
			return utils.Permanent(fmt.Errorf("report larger than %d bytes", f.maxBytes))
		}
		body = b
		return nil
	})
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrFetch, err)
	}
	return body, path.Base(u.Path), nil
}
