package application

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// DefaultProbeTimeout bounds each probe request.
const DefaultProbeTimeout = 10 * time.Second

// ProbeOptions configures a live health-check probe.
type ProbeOptions struct {
	Path    string
	Timeout time.Duration
	Retries int
	// Backoff is the pause between attempts.
	Backoff time.Duration
}

// ProbeAttempt is the outcome of one GET.
type ProbeAttempt struct {
	StatusCode int           `json:"status_code,omitempty"`
	Latency    time.Duration `json:"latency_ns"`
	Err        string        `json:"error,omitempty"`
}

// ProbeResult is the outcome of a probe run. Healthy reports whether the
// last attempt returned a 2xx.
type ProbeResult struct {
	URL      string         `json:"url"`
	Healthy  bool           `json:"healthy"`
	Attempts []ProbeAttempt `json:"attempts"`
}

// Last returns the final attempt.
func (r *ProbeResult) Last() ProbeAttempt {
	if len(r.Attempts) == 0 {
		return ProbeAttempt{}
	}
	return r.Attempts[len(r.Attempts)-1]
}

// ProbeService issues GET requests against a deployed health endpoint. It is
// never part of a validation run.
type ProbeService struct {
	client *http.Client
	logger *log.Logger
}

// NewProbeService creates a ProbeService. A nil client uses a fresh
// http.Client; per-request timeouts come from ProbeOptions.
func NewProbeService(client *http.Client, logger *log.Logger) *ProbeService {
	if client == nil {
		client = &http.Client{}
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &ProbeService{client: client, logger: logger}
}

// Probe resolves opts.Path against base and retries until a 2xx or the
// attempts run out. The error is non-nil only for an unusable URL.
func (s *ProbeService) Probe(ctx context.Context, base string, opts ProbeOptions) (*ProbeResult, error) {
	target, err := probeURL(base, opts.Path)
	if err != nil {
		return nil, err
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultProbeTimeout
	}
	if opts.Retries < 0 {
		opts.Retries = 0
	}

	result := &ProbeResult{URL: target}
	for i := 0; i <= opts.Retries; i++ {
		if i > 0 && opts.Backoff > 0 {
			select {
			case <-ctx.Done():
				return result, nil
			case <-time.After(opts.Backoff):
			}
		}
		attempt := s.once(ctx, target, opts.Timeout)
		result.Attempts = append(result.Attempts, attempt)
		s.logger.Debug("probe attempt", "url", target, "attempt", i+1, "status", attempt.StatusCode, "latency", attempt.Latency, "err", attempt.Err)
		if attempt.Err == "" && attempt.StatusCode >= 200 && attempt.StatusCode < 300 {
			result.Healthy = true
			break
		}
		if ctx.Err() != nil {
			break
		}
	}
	return result, nil
}

func (s *ProbeService) once(ctx context.Context, target string, timeout time.Duration) ProbeAttempt {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return ProbeAttempt{Err: err.Error()}
	}
	start := time.Now()
	resp, err := s.client.Do(req)
	latency := time.Since(start)
	if err != nil {
		return ProbeAttempt{Latency: latency, Err: err.Error()}
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
	return ProbeAttempt{StatusCode: resp.StatusCode, Latency: latency}
}

// probeURL joins base and path. A base without scheme gets https://.
func probeURL(base, path string) (string, error) {
	if !strings.Contains(base, "://") {
		base = "https://" + base
	}
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("parsing probe url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("probe url %q: unsupported scheme %q", base, u.Scheme)
	}
	if u.Host == "" {
		return "", fmt.Errorf("probe url %q has no host", base)
	}
	if path != "" {
		u.Path = strings.TrimSuffix(u.Path, "/") + "/" + strings.TrimPrefix(path, "/")
	}
	return u.String(), nil
}
