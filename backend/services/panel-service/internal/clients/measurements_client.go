package clients

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"sensorpanel/backend/services/panel-service/internal/models"
)

// HTTPDoer defines http.Client interface subset.
type HTTPDoer interface {
	Do(*http.Request) (*http.Response, error)
}

// ErrorKind classifies why a fetch failed.
type ErrorKind string

const (
	KindNetwork ErrorKind = "network"
	KindHTTP    ErrorKind = "http"
	KindParse   ErrorKind = "parse"
)

// FetchError is returned for every failed measurements fetch.
type FetchError struct {
	Kind       ErrorKind
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.Kind == KindHTTP {
		return fmt.Sprintf("fetch measurements: http status %d", e.StatusCode)
	}
	return fmt.Sprintf("fetch measurements: %s: %v", e.Kind, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of a FetchError found in err's chain, or "" if none.
func KindOf(err error) ErrorKind {
	var fetchErr *FetchError
	if errors.As(err, &fetchErr) {
		return fetchErr.Kind
	}
	return ""
}

// MeasurementsClient reads the measurements list from the sensor backend.
type MeasurementsClient struct {
	url    string
	client HTTPDoer
	logger *zap.Logger
}

// NewMeasurementsClient returns client for the given endpoint URL.
func NewMeasurementsClient(url string, client HTTPDoer, logger *zap.Logger) *MeasurementsClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MeasurementsClient{
		url:    strings.TrimSpace(url),
		client: client,
		logger: logger,
	}
}

// URL returns the polled endpoint.
func (c *MeasurementsClient) URL() string {
	return c.url
}

// Fetch issues an uncached GET and decodes the JSON array body.
func (c *MeasurementsClient) Fetch(ctx context.Context) ([]models.Measurement, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, &FetchError{Kind: KindNetwork, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cache-Control", "no-cache, no-store")
	req.Header.Set("Pragma", "no-cache")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &FetchError{Kind: KindNetwork, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &FetchError{
			Kind:       KindHTTP,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("unexpected status %s", resp.Status),
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &FetchError{Kind: KindNetwork, Err: err}
	}

	var records []models.Measurement
	if err := json.Unmarshal(body, &records); err != nil {
		return nil, &FetchError{Kind: KindParse, Err: err}
	}
	if records == nil {
		return nil, &FetchError{Kind: KindParse, Err: errors.New("body is not a json array")}
	}
	c.logger.Debug("measurements fetched", zap.Int("count", len(records)))
	return records, nil
}

// NewDefaultHTTPClient returns *http.Client with timeout.
func NewDefaultHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{Timeout: timeout}
}
