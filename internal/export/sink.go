package export

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/AngelCh415/ngram-report/internal/models"
)

var ErrSinkNotConfigured = errors.New("sink not configured")

type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Sink receives the combined report as JSON, signed with HMAC-SHA256 over
// the body in the X-Signature header.
type Sink struct {
	c      HTTPDoer
	url    string
	secret string
}

func NewSink(c HTTPDoer, url, secret string) *Sink {
	return &Sink{c: c, url: url, secret: secret}
}

func (s *Sink) Configured() bool { return s != nil && s.url != "" && s.secret != "" }

// Sign returns the hex HMAC-SHA256 of body under secret.
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// Push sends the combined rows and returns how many were exported.
func (s *Sink) Push(ctx context.Context, rep models.Report) (int, error) {
	if !s.Configured() {
		return 0, ErrSinkNotConfigured
	}
	if rep.Empty() {
		return 0, nil
	}
	b, err := json.Marshal(rep.Combined)
	if err != nil {
		return 0, fmt.Errorf("encode report: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(b))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Signature", Sign(s.secret, b))
	resp, err := s.c.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return 0, fmt.Errorf("export sink non-2xx: %d", resp.StatusCode)
	}
	return len(rep.Combined), nil
}
