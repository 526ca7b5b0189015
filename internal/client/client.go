// Package client talks to the remote crop diagnosis service.
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
	"net/textproto"
	"net/url"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/yildizm/LeafScan/internal/diagnosis"
	"github.com/yildizm/LeafScan/internal/logger"
	"github.com/yildizm/LeafScan/internal/picker"
)

// maxErrorBody bounds how much of a failed response is read for diagnostics
const maxErrorBody = 64 << 10

// Client issues analyze, report and health requests against the diagnosis service
type Client struct {
	config  *Config
	client  *http.Client
	baseURL *url.URL
	logger  *zap.Logger
}

// New creates a client; a nil logger disables logging
func New(config *Config, log *zap.Logger) (*Client, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	baseURL, err := url.Parse(config.BaseURL)
	if err != nil {
		return nil, diagnosis.NewServiceErrorWithCause(diagnosis.ErrTypeConfiguration, "invalid base URL", "", err)
	}

	return &Client{
		config:  config,
		client:  &http.Client{Timeout: config.Timeout},
		baseURL: baseURL,
		logger:  logger.OrNop(log).Named("client"),
	}, nil
}

// BaseURL returns the configured service address
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// Endpoint returns the absolute URL for a service path
func (c *Client) Endpoint(path string) string {
	return c.baseURL.JoinPath(path).String()
}

// Analyze uploads the image as multipart field "image" and decodes the diagnosis
func (c *Client) Analyze(ctx context.Context, img *picker.Image) (*diagnosis.Result, error) {
	if img == nil {
		return nil, diagnosis.ErrNoImage
	}

	requestID := uuid.NewString()
	opLogger := logger.WithOperation(c.logger, "client.analyze", requestID)

	body, contentType, err := multipartBody(img)
	if err != nil {
		return nil, diagnosis.NewServiceErrorWithCause(diagnosis.ErrTypeInternal, "failed to build multipart body", AnalyzePath, err)
	}

	start := time.Now()
	resp, err := c.post(ctx, AnalyzePath, requestID, contentType, body)
	if err != nil {
		opLogger.Error("analyze request failed", zap.Error(err))
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	var result diagnosis.Result
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		wrapped := withRequestID(diagnosis.NewServiceErrorWithCause(diagnosis.ErrTypeDecode, "failed to decode diagnosis", AnalyzePath, err), requestID)
		opLogger.Error("analyze response malformed", zap.Error(wrapped))
		return nil, wrapped
	}
	if err := result.Validate(); err != nil {
		wrapped := withRequestID(diagnosis.NewServiceErrorWithCause(diagnosis.ErrTypeDecode, "unexpected diagnosis shape", AnalyzePath, err), requestID)
		opLogger.Error("analyze response rejected", zap.Error(wrapped))
		return nil, wrapped
	}

	opLogger.Info("diagnosis received",
		zap.String("image", img.Name),
		zap.Int("bytes", img.Size()),
		zap.String("crop", result.Crop),
		zap.String("status", string(result.Status)),
		zap.Float64("confidence", result.Confidence),
		zap.Duration("latency", time.Since(start)))

	return &result, nil
}

// GenerateReport posts the diagnosis unchanged and returns the binary report body
func (c *Client) GenerateReport(ctx context.Context, result *diagnosis.Result) ([]byte, error) {
	if result == nil {
		return nil, diagnosis.ErrNoResult
	}

	requestID := uuid.NewString()
	opLogger := logger.WithOperation(c.logger, "client.generate_report", requestID)

	jsonData, err := json.Marshal(result)
	if err != nil {
		return nil, diagnosis.NewServiceErrorWithCause(diagnosis.ErrTypeInternal, "failed to marshal diagnosis", ReportPath, err)
	}

	resp, err := c.post(ctx, ReportPath, requestID, "application/json", bytes.NewReader(jsonData))
	if err != nil {
		opLogger.Error("report request failed", zap.Error(err))
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		wrapped := withRequestID(classifyTransport(err, ReportPath, "failed to read report body"), requestID)
		opLogger.Error("report body read failed", zap.Error(wrapped))
		return nil, wrapped
	}

	opLogger.Info("report received",
		zap.Int("bytes", len(data)),
		zap.String("content_type", resp.Header.Get("Content-Type")))

	return data, nil
}

// HealthCheck verifies the service answers on its test endpoint
func (c *Client) HealthCheck(ctx context.Context) (*diagnosis.HealthResponse, error) {
	endpoint := c.baseURL.JoinPath(HealthPath)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), http.NoBody)
	if err != nil {
		return nil, diagnosis.NewServiceErrorWithCause(diagnosis.ErrTypeInternal, "failed to create health check request", HealthPath, err)
	}
	c.setHeaders(req, uuid.NewString())

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, classifyTransport(err, HealthPath, "health check failed")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, statusError(resp, HealthPath)
	}

	var health diagnosis.HealthResponse
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		return nil, diagnosis.NewServiceErrorWithCause(diagnosis.ErrTypeDecode, "failed to decode health response", HealthPath, err)
	}
	return &health, nil
}

// post sends one request and turns transport failures and non-2xx codes into ServiceErrors
func (c *Client) post(ctx context.Context, path, requestID, contentType string, body io.Reader) (*http.Response, error) {
	endpoint := c.baseURL.JoinPath(path)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), body)
	if err != nil {
		return nil, diagnosis.NewServiceErrorWithCause(diagnosis.ErrTypeInternal, "failed to create request", path, err)
	}
	req.Header.Set("Content-Type", contentType)
	c.setHeaders(req, requestID)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, withRequestID(classifyTransport(err, path, "request failed"), requestID)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer func() { _ = resp.Body.Close() }()
		return nil, withRequestID(statusError(resp, path), requestID)
	}

	return resp, nil
}

func (c *Client) setHeaders(req *http.Request, requestID string) {
	req.Header.Set("X-Request-ID", requestID)
	if c.config.UserAgent != "" {
		req.Header.Set("User-Agent", c.config.UserAgent)
	}
}

// multipartBody builds a form with a single part named "image"
func multipartBody(img *picker.Image) (*bytes.Buffer, string, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	filename := img.Name
	if filename == "" {
		filename = "upload"
	}

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, ImageField, filename))
	contentType := img.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	header.Set("Content-Type", contentType)

	part, err := writer.CreatePart(header)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(img.Data); err != nil {
		return nil, "", err
	}
	if err := writer.Close(); err != nil {
		return nil, "", err
	}

	return body, writer.FormDataContentType(), nil
}

// statusError reads the service's {"error": "..."} body when present
func statusError(resp *http.Response, path string) *diagnosis.ServiceError {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	var errorResp diagnosis.ErrorResponse
	if json.Unmarshal(body, &errorResp) == nil && errorResp.Error != "" {
		return diagnosis.NewStatusError(path, resp.StatusCode, errorResp.Error)
	}
	return diagnosis.NewStatusError(path, resp.StatusCode, fmt.Sprintf("request failed with status %d", resp.StatusCode))
}

// classifyTransport separates deadline failures from other network errors
func classifyTransport(err error, path, message string) *diagnosis.ServiceError {
	if errors.Is(err, context.DeadlineExceeded) {
		return diagnosis.NewServiceErrorWithCause(diagnosis.ErrTypeTimeout, message, path, err)
	}
	var netErr interface{ Timeout() bool }
	if errors.As(err, &netErr) && netErr.Timeout() {
		return diagnosis.NewServiceErrorWithCause(diagnosis.ErrTypeTimeout, message, path, err)
	}
	return diagnosis.NewServiceErrorWithCause(diagnosis.ErrTypeNetwork, message, path, err)
}

func withRequestID(err *diagnosis.ServiceError, requestID string) *diagnosis.ServiceError {
	err.RequestID = requestID
	return err
}
