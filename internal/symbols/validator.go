package symbols

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"
)

// Config holds Symbol Validator configuration.
type Config struct {
	URL            string        // Catalog endpoint returning [{"id": "..."}, ...]
	RetryCount     int           // Max fetch attempts before giving up
	RetryBaseDelay time.Duration // Wait after the first failure; doubles per attempt
	FetchTimeout   time.Duration // Per-attempt request timeout
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		RetryCount:     5,
		RetryBaseDelay: 1000 * time.Millisecond,
		FetchTimeout:   5 * time.Second,
	}
}

// Validator caches the set of tradable symbol identifiers.
type Validator struct {
	cfg        Config
	httpClient *http.Client
	logger     *slog.Logger

	mu  sync.RWMutex
	set map[string]struct{}
}

// Option configures a Validator.
type Option func(*Validator)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(v *Validator) {
		v.httpClient = hc
	}
}

// NewValidator creates a Symbol Validator. The universe is empty until
// Load succeeds.
func NewValidator(cfg Config, logger *slog.Logger, opts ...Option) *Validator {
	if logger == nil {
		logger = slog.Default()
	}

	v := &Validator{
		cfg:        cfg,
		httpClient: &http.Client{},
		logger:     logger,
		set:        map[string]struct{}{},
	}

	for _, opt := range opts {
		opt(v)
	}

	return v
}

// catalogRecord is the wire shape of one catalog entry.
type catalogRecord struct {
	ID string `json:"id"`
}

// Load fetches the symbol catalog, retrying with doubling backoff.
//
// Each attempt is bounded by cfg.FetchTimeout. After cfg.RetryCount
// failed attempts the returned error is final; the process cannot
// operate without the universe.
func (v *Validator) Load(ctx context.Context) error {
	var lastErr error
	delay := v.cfg.RetryBaseDelay

	for attempt := 1; attempt <= v.cfg.RetryCount; attempt++ {
		if attempt > 1 {
			v.logger.Warn("retrying symbol catalog fetch",
				"attempt", attempt,
				"backoff", delay,
				"error", lastErr,
			)

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}

			delay *= 2
		}

		set, err := v.fetch(ctx)
		if err == nil {
			v.mu.Lock()
			v.set = set
			v.mu.Unlock()

			v.logger.Info("symbol universe loaded", "symbols", len(set))
			return nil
		}

		lastErr = err
	}

	return fmt.Errorf("symbol catalog unavailable after %d attempts: %w", v.cfg.RetryCount, lastErr)
}

// fetch performs a single catalog request.
func (v *Validator) fetch(ctx context.Context) (map[string]struct{}, error) {
	reqCtx, cancel := context.WithTimeout(ctx, v.cfg.FetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, v.cfg.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := v.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("catalog responded %d", resp.StatusCode)
	}

	// Anything that is not an array of records is a failed fetch,
	// never a partial universe.
	var records []catalogRecord
	if err := json.Unmarshal(body, &records); err != nil {
		return nil, fmt.Errorf("unmarshal catalog: %w", err)
	}

	set := make(map[string]struct{}, len(records))
	for _, rec := range records {
		if rec.ID == "" {
			continue
		}
		set[rec.ID] = struct{}{}
	}

	return set, nil
}

// IsValid reports whether symbol is part of the loaded universe.
func (v *Validator) IsValid(symbol string) bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	_, ok := v.set[symbol]
	return ok
}

// Size returns the number of symbols currently loaded.
func (v *Validator) Size() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return len(v.set)
}
