package api

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"rxprev/domain/core"
	"rxprev/domain/prevalence"
	"rxprev/internal"
	"rxprev/internal/errors"
)

// FileReader reads a JSON observation array from a file, or from stdin when
// the path is "-".
type FileReader struct {
	path   string
	stdin  io.Reader
	logger *internal.Logger
}

// NewFileReader creates a reader for path
func NewFileReader(path string, logger *internal.Logger) *FileReader {
	return &FileReader{path: path, stdin: os.Stdin, logger: logger}
}

// ReadObservations implements ports.ObservationReader
func (r *FileReader) ReadObservations(ctx context.Context) (*prevalence.Batch, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	startTime := time.Now()

	var body []byte
	var err error
	if r.path == "-" {
		body, err = io.ReadAll(r.stdin)
	} else {
		body, err = os.ReadFile(r.path)
	}
	if err != nil {
		return nil, errors.IOError("failed to read "+r.path, err)
	}

	return decodeBatch(r.path, body, "", startTime, r.logger)
}

// APIReader fetches a JSON observation document over HTTP
type APIReader struct {
	config     *APIDataSource
	httpClient *http.Client
	logger     *internal.Logger
}

// NewAPIReader creates a new API reader for a data source
func NewAPIReader(config *APIDataSource, logger *internal.Logger) *APIReader {
	timeout := config.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	return &APIReader{
		config:     config,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// ReadObservations implements ports.ObservationReader
func (r *APIReader) ReadObservations(ctx context.Context) (*prevalence.Batch, error) {
	startTime := time.Now()

	req, err := r.buildRequest(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, errors.IOError("HTTP request failed", err)
	}
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return nil, errors.IOError("failed to read response", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, errors.IOError(fmt.Sprintf("API returned status %d", resp.StatusCode), fmt.Errorf("%s", truncate(body, 200)))
	}

	return decodeBatch(r.config.URL, body, r.config.DataPath, startTime, r.logger)
}

// buildRequest creates an HTTP request with authentication
func (r *APIReader) buildRequest(ctx context.Context) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.config.URL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	for k, v := range r.config.Headers {
		req.Header.Set(k, v)
	}
	switch r.config.AuthMethod {
	case "bearer":
		req.Header.Set("Authorization", "Bearer "+r.config.AuthToken)
	case "api_key":
		req.Header.Set("X-API-Key", r.config.AuthToken)
	}
	return req, nil
}

func decodeBatch(source string, body []byte, dataPath string, startTime time.Time, logger *internal.Logger) (*prevalence.Batch, error) {
	observations, err := DecodeObservations(body, dataPath)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", source)
	}
	batch := &prevalence.Batch{
		Source:       source,
		Fingerprint:  core.NewHash(body),
		Observations: observations,
	}
	logger.Info("read %d observations from %s in %.2fms (sha256 %s)",
		len(observations), source, float64(time.Since(startTime).Nanoseconds())/1e6, batch.Fingerprint.Short())
	return batch, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
