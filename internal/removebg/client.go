package removebg

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultEndpoint = "https://api.remove.bg/v1.0/removebg"
	DefaultSize     = "auto"
	DefaultTimeout  = 60 * time.Second

	// remove.bg results stay well below this; anything larger is not an image we asked for.
	maxResultBytes = 64 << 20
	maxErrorBytes  = 64 << 10
)

type Result struct {
	Data           []byte
	CreditsCharged float64
}

type Client struct {
	endpoint   string
	apiKey     string
	size       string
	timeout    time.Duration
	httpClient *http.Client
}

type Option func(*Client)

func WithEndpoint(endpoint string) Option {
	return func(c *Client) {
		if endpoint = strings.TrimSpace(endpoint); endpoint != "" {
			c.endpoint = endpoint
		}
	}
}

func WithSize(size string) Option {
	return func(c *Client) {
		if size = strings.TrimSpace(size); size != "" {
			c.size = size
		}
	}
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

func NewClient(apiKey string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("removebg: api key must not be empty")
	}
	c := &Client{
		endpoint:   DefaultEndpoint,
		apiKey:     apiKey,
		size:       DefaultSize,
		timeout:    DefaultTimeout,
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Remove uploads one image and returns the background-free result. It makes
// exactly one attempt bounded by the client timeout; all failures are *Error.
func (c *Client) Remove(ctx context.Context, image io.Reader, filename string) (*Result, error) {
	body, contentType, err := c.buildForm(image, filename)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, body)
	if err != nil {
		return nil, &Error{Kind: KindTransport, Err: fmt.Errorf("build request: %w", err)}
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("X-Api-Key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, classify(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, readErr := io.ReadAll(io.LimitReader(resp.Body, maxErrorBytes))
		if readErr != nil {
			return nil, classify(readErr)
		}
		return nil, &Error{
			Kind:       KindRejected,
			StatusCode: resp.StatusCode,
			Reason:     reasonFromBody(resp.StatusCode, raw),
		}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResultBytes+1))
	if err != nil {
		return nil, classify(err)
	}
	switch {
	case len(data) == 0:
		return nil, Malformed(errors.New("empty response body"))
	case len(data) > maxResultBytes:
		return nil, Malformed(fmt.Errorf("response body exceeds %d bytes", maxResultBytes))
	}

	credits, _ := strconv.ParseFloat(resp.Header.Get("X-Credits-Charged"), 64)
	return &Result{
		Data:           data,
		CreditsCharged: credits,
	}, nil
}

func (c *Client) buildForm(image io.Reader, filename string) (*bytes.Buffer, string, error) {
	if filename == "" {
		filename = "image.jpg"
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	part, err := w.CreateFormFile("image_file", filepath.Base(filename))
	if err != nil {
		return nil, "", &Error{Kind: KindTransport, Err: fmt.Errorf("create form file: %w", err)}
	}
	if _, err := io.Copy(part, image); err != nil {
		return nil, "", &Error{Kind: KindTransport, Err: fmt.Errorf("read image: %w", err)}
	}
	if err := w.WriteField("size", c.size); err != nil {
		return nil, "", &Error{Kind: KindTransport, Err: fmt.Errorf("write size field: %w", err)}
	}
	if err := w.Close(); err != nil {
		return nil, "", &Error{Kind: KindTransport, Err: fmt.Errorf("close form: %w", err)}
	}
	return &buf, w.FormDataContentType(), nil
}

func classify(err error) *Error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return &Error{Kind: KindTimeout, Err: err}
	}
	return &Error{Kind: KindTransport, Err: err}
}
