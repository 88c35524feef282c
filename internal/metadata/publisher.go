// Package metadata uploads token images and metadata to the
// content-addressed storage endpoint the market site serves them from.
package metadata

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.uber.org/zap"
)

// Token is the uploadable token description.
type Token struct {
	Name        string
	Symbol      string
	Description string
	Image       string // remote URL or local file path
	Twitter     string
	Telegram    string
	Website     string
}

// Options adjusts publisher behavior, mostly for tests.
type Options struct {
	HTTPClient *http.Client
	RetryDelay time.Duration
	MaxTries   uint
}

// DefaultOptions returns production defaults: 3 attempts total with a
// doubling base delay.
func DefaultOptions() Options {
	return Options{
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
		RetryDelay: time.Second,
		MaxTries:   3,
	}
}

// Publisher uploads token metadata. This is the only network caller in the
// pipeline allowed to retry transparently.
type Publisher struct {
	endpoint   string
	httpClient *http.Client
	retryDelay time.Duration
	maxTries   uint
	logger     *zap.Logger
}

// NewPublisher creates a publisher for the given upload endpoint.
func NewPublisher(endpoint string, logger *zap.Logger, opts ...Options) *Publisher {
	options := DefaultOptions()
	if len(opts) > 0 {
		options = opts[0]
	}
	if options.HTTPClient == nil {
		options.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	}
	if options.RetryDelay <= 0 {
		options.RetryDelay = time.Second
	}
	if options.MaxTries == 0 {
		options.MaxTries = 3
	}
	return &Publisher{
		endpoint:   endpoint,
		httpClient: options.HTTPClient,
		retryDelay: options.RetryDelay,
		maxTries:   options.MaxTries,
		logger:     logger.Named("metadata"),
	}
}

// Publish uploads the image plus all textual fields and returns the
// resulting metadata URI.
func (p *Publisher) Publish(ctx context.Context, token Token) (string, error) {
	imageData, contentType, err := p.loadImage(ctx, token.Image)
	if err != nil {
		return "", fmt.Errorf("failed to load token image: %w", err)
	}

	body, formContentType, err := buildForm(token, imageData, contentType)
	if err != nil {
		return "", fmt.Errorf("failed to build upload form: %w", err)
	}

	backoffPolicy := backoff.NewExponentialBackOff()
	backoffPolicy.InitialInterval = p.retryDelay
	backoffPolicy.Multiplier = 2
	backoffPolicy.RandomizationFactor = 0

	notify := func(err error, duration time.Duration) {
		p.logger.Warn("Metadata upload attempt failed, retrying",
			zap.Error(err),
			zap.Duration("backoff", duration))
	}

	operation := func() (string, error) {
		return p.upload(ctx, body, formContentType)
	}

	uri, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(backoffPolicy),
		backoff.WithMaxTries(p.maxTries),
		backoff.WithNotify(notify))
	if err != nil {
		return "", fmt.Errorf("metadata upload failed after %d attempts: %w", p.maxTries, err)
	}

	p.logger.Info("Metadata published", zap.String("uri", uri))
	return uri, nil
}

func (p *Publisher) upload(ctx context.Context, body []byte, contentType string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("upload failed: %s", resp.Status)
	}

	var result struct {
		MetadataURI string `json:"metadataUri"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode upload response: %w", err)
	}
	if result.MetadataURI == "" {
		return "", fmt.Errorf("upload response missing metadataUri")
	}
	return result.MetadataURI, nil
}

// loadImage resolves the image reference: remote URLs are fetched, local
// paths are read with a content type sniffed from the extension.
func (p *Publisher) loadImage(ctx context.Context, image string) ([]byte, string, error) {
	if strings.HasPrefix(image, "http://") || strings.HasPrefix(image, "https://") {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, image, nil)
		if err != nil {
			return nil, "", err
		}
		resp, err := p.httpClient.Do(req)
		if err != nil {
			return nil, "", fmt.Errorf("failed to fetch image: %w", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return nil, "", fmt.Errorf("failed to fetch image: %s", resp.Status)
		}
		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, "", fmt.Errorf("failed to read image response: %w", err)
		}
		contentType := resp.Header.Get("Content-Type")
		if contentType == "" {
			contentType = "image/png"
		}
		return data, contentType, nil
	}

	data, err := os.ReadFile(image)
	if err != nil {
		return nil, "", err
	}
	return data, contentTypeForExtension(image), nil
}

func contentTypeForExtension(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	default:
		return "image/png"
	}
}

func buildForm(token Token, imageData []byte, imageContentType string) ([]byte, string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="file"; filename="token-image"`)
	header.Set("Content-Type", imageContentType)
	part, err := writer.CreatePart(header)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(imageData); err != nil {
		return nil, "", err
	}

	fields := map[string]string{
		"name":     token.Name,
		"symbol":   token.Symbol,
		"showName": "true",
	}
	optional := map[string]string{
		"description": token.Description,
		"twitter":     token.Twitter,
		"telegram":    token.Telegram,
		"website":     token.Website,
	}
	for key, value := range optional {
		if value != "" {
			fields[key] = value
		}
	}
	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			return nil, "", err
		}
	}

	if err := writer.Close(); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), writer.FormDataContentType(), nil
}
