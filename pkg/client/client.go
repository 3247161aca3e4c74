// Package client provides an HTTP client for the OpenAI Responses API with
// optional response caching.
//
// The client is transparent about caching: repeated identical requests are
// served from the configured cache.Driver and fresh responses are persisted
// asynchronously via a worker pool, so callers never wait on storage.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/papercomputeco/respond/pkg/cache"
	"github.com/papercomputeco/respond/pkg/responses"
	"github.com/papercomputeco/respond/pkg/utils"
	"github.com/papercomputeco/respond/pkg/worker"
)

// DefaultBaseURL is the production Responses API endpoint.
const DefaultBaseURL = "https://api.openai.com/v1"

// Config is the configuration options for the client.
type Config struct {
	// BaseURL is the API base (defaults to DefaultBaseURL).
	BaseURL string

	// APIKey authenticates requests. Required.
	APIKey string

	// Organization is the optional OpenAI organization id.
	Organization string

	// Cache is the optional response cache. When nil, every request goes
	// to the API.
	Cache cache.Driver

	// HTTPClient overrides the default HTTP client.
	HTTPClient *http.Client

	// Logger is the provided zap logger.
	Logger *zap.Logger
}

// Client talks to the Responses API.
type Client struct {
	config     Config
	httpClient *http.Client
	logger     *zap.Logger
	cache      cache.Driver
	workerPool *worker.Pool
}

// New creates a new Client.
// When a cache driver is configured, a worker pool is started to persist
// responses off the request path; call Close to drain it.
func New(config Config) (*Client, error) {
	if config.APIKey == "" {
		return nil, errors.New("api key is required")
	}

	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}

	if config.Logger == nil {
		config.Logger = zap.NewNop()
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			// Responses can be slow, especially with reasoning models
			Timeout: 5 * time.Minute,
		}
	}

	c := &Client{
		config:     config,
		httpClient: httpClient,
		logger:     config.Logger,
		cache:      config.Cache,
	}

	if config.Cache != nil {
		wp, err := worker.NewPool(&worker.Config{
			Driver: config.Cache,
			Logger: config.Logger,
		})
		if err != nil {
			return nil, fmt.Errorf("could not create worker pool: %w", err)
		}
		c.workerPool = wp
	}

	return c, nil
}

// Close drains the worker pool so pending cache writes complete.
func (c *Client) Close() error {
	if c.workerPool != nil {
		c.workerPool.Close()
	}
	return nil
}

// CreateResponse creates a response (POST /responses) and waits for the
// complete body. Identical requests are served from the cache when one is
// configured.
func (c *Client) CreateResponse(ctx context.Context, req *responses.Request) (*responses.Response, error) {
	key, err := cache.Key(req)
	if err != nil {
		return nil, fmt.Errorf("computing cache key: %w", err)
	}

	if c.cache != nil {
		entry, err := c.cache.Get(ctx, key)
		if err == nil {
			c.logger.Debug("cache hit",
				zap.String("key", key),
				zap.String("model", entry.Model),
			)
			return entry.Response, nil
		}
		if !cache.IsNotFound(err) {
			c.logger.Warn("cache lookup failed", zap.String("key", key), zap.Error(err))
		}
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+"/responses", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	c.setRequestHeaders(httpReq)

	startTime := time.Now()
	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("api request failed: %w", err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if httpResp.StatusCode != http.StatusOK {
		return nil, parseAPIError(httpResp.StatusCode, respBody)
	}

	var resp responses.Response
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	c.logger.Debug("received response",
		zap.String("id", resp.ID),
		zap.String("model", resp.Model),
		zap.Duration("duration", time.Since(startTime)),
	)

	// Non-blocking enqueue for async cache persistence
	if c.workerPool != nil {
		c.workerPool.Enqueue(worker.Job{
			Key:      key,
			Model:    resp.Model,
			Response: &resp,
		})
	}

	return &resp, nil
}

// StreamResponse creates a streaming response (POST /responses with
// stream=true) and returns a Stream for iterating decoded events. The
// caller must Close the stream.
func (c *Client) StreamResponse(ctx context.Context, req *responses.Request) (*Stream, error) {
	return c.streamResponse(ctx, req, nil)
}

// RecordStreamResponse streams like StreamResponse while copying the raw SSE
// bytes verbatim to dest as they are consumed. The copy is a transcript the
// replay server can serve (see pkg/replay).
func (c *Client) RecordStreamResponse(ctx context.Context, req *responses.Request, dest io.Writer) (*Stream, error) {
	return c.streamResponse(ctx, req, dest)
}

func (c *Client) streamResponse(ctx context.Context, req *responses.Request, dest io.Writer) (*Stream, error) {
	clone := *req
	clone.Stream = true

	body, err := json.Marshal(&clone)
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+"/responses", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	c.setRequestHeaders(httpReq)
	httpReq.Header.Set("Accept", "text/event-stream")

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("api request failed: %w", err)
	}

	if httpResp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(httpResp.Body)
		httpResp.Body.Close()
		return nil, parseAPIError(httpResp.StatusCode, respBody)
	}

	c.logger.Debug("stream opened", zap.String("model", clone.Model))

	if dest != nil {
		return newRecordedStream(httpResp.Body, dest, c.logger), nil
	}
	return newStream(httpResp.Body, c.logger), nil
}

// File is the metadata returned for an uploaded file.
type File struct {
	ID        string `json:"id"`
	Object    string `json:"object"`
	Bytes     int64  `json:"bytes"`
	CreatedAt int64  `json:"created_at"`
	Filename  string `json:"filename"`
	Purpose   string `json:"purpose"`
}

// UploadFile uploads a local file (POST /files) for later reference from
// request input items.
func (c *Client) UploadFile(ctx context.Context, path, purpose string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	if err := mw.WriteField("purpose", purpose); err != nil {
		return nil, fmt.Errorf("writing purpose field: %w", err)
	}

	part, err := mw.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return nil, fmt.Errorf("creating form file: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, fmt.Errorf("copying file: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("closing multipart writer: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+"/files", &buf)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	c.setRequestHeaders(httpReq)
	httpReq.Header.Set("Content-Type", mw.FormDataContentType())

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("api request failed: %w", err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if httpResp.StatusCode != http.StatusOK {
		return nil, parseAPIError(httpResp.StatusCode, respBody)
	}

	var file File
	if err := json.Unmarshal(respBody, &file); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	return &file, nil
}

// setRequestHeaders applies the standard headers for an API request. Each
// request gets a fresh X-Request-ID for correlation with server-side logs.
func (c *Client) setRequestHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "respond/"+utils.Version)
	req.Header.Set("X-Request-ID", uuid.NewString())

	if c.config.Organization != "" {
		req.Header.Set("OpenAI-Organization", c.config.Organization)
	}
}

// parseAPIError turns a non-200 body into an error, preferring the API's
// structured error object when the body carries one.
func parseAPIError(status int, body []byte) error {
	var wrapped struct {
		Error *responses.APIError `json:"error"`
	}
	if err := json.Unmarshal(body, &wrapped); err == nil && wrapped.Error != nil {
		return wrapped.Error
	}

	return fmt.Errorf("api returned status %d: %s", status, bytes.TrimSpace(body))
}
