package wled

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/muurk/wledctl/internal/version"
)

const (
	// DefaultTimeout is the default HTTP request timeout. Firmware uploads
	// to an ESP32 over WiFi can take tens of seconds.
	DefaultTimeout = 60 * time.Second

	// ConfigPath serves the device configuration document
	ConfigPath = "/cfg.json"

	// PresetsPath serves the device presets document
	PresetsPath = "/presets.json"

	// UpdatePath accepts firmware uploads
	UpdatePath = "/update"

	// FirmwareField is the multipart field the firmware is sent in
	FirmwareField = "file"
)

// HTTPClient is the subset of *http.Client used to talk to devices.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client performs single-attempt requests against WLED devices.
// It never retries; every call results in exactly one HTTP request.
type Client struct {
	// HTTPClient is the underlying HTTP client
	HTTPClient HTTPClient

	// UserAgent is sent with every request
	UserAgent string
}

// NewClient creates a client with the given request timeout (0 = DefaultTimeout).
func NewClient(timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		HTTPClient: &http.Client{
			Timeout: timeout,
			// Redirects are reported, not followed.
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		UserAgent: version.UserAgent(),
	}
}

// Download fetches url and writes the body to dest. dest is only written
// when the device answers with a 2xx status; it may hold a partial body if
// the transfer breaks mid-stream, in which case a transport error is returned.
func (c *Client) Download(ctx context.Context, host, url, dest string) Result {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Classify(host, 0, err)
	}
	c.setHeaders(req)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return Classify(host, 0, err)
	}
	defer func() { _ = resp.Body.Close() }()

	result := Classify(host, resp.StatusCode, nil)
	if !result.OK() {
		_, _ = io.Copy(io.Discard, resp.Body)
		return result
	}

	f, err := os.Create(dest)
	if err != nil {
		return Classify(host, 0, fmt.Errorf("create %s: %w", dest, err))
	}
	if _, err := io.Copy(f, resp.Body); err != nil {
		_ = f.Close()
		return Classify(host, 0, fmt.Errorf("read response body: %w", err))
	}
	if err := f.Close(); err != nil {
		return Classify(host, 0, fmt.Errorf("close %s: %w", dest, err))
	}

	return result
}

// UploadFirmware POSTs the file at firmwarePath to url as a multipart form
// with the firmware in the "file" field. It returns once the device answers;
// flashing and reboot happen afterwards on the device.
func (c *Client) UploadFirmware(ctx context.Context, host, url, firmwarePath string) Result {
	body, contentType, err := firmwareForm(firmwarePath)
	if err != nil {
		return Classify(host, 0, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return Classify(host, 0, err)
	}
	c.setHeaders(req)
	req.Header.Set("Content-Type", contentType)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return Classify(host, 0, err)
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, resp.Body)

	return Classify(host, resp.StatusCode, nil)
}

// firmwareForm builds the multipart body in memory so the request carries a
// Content-Length; WLED's upload handler does not accept chunked bodies.
func firmwareForm(firmwarePath string) (*bytes.Buffer, string, error) {
	f, err := os.Open(firmwarePath)
	if err != nil {
		return nil, "", fmt.Errorf("open firmware: %w", err)
	}
	defer func() { _ = f.Close() }()

	body := &bytes.Buffer{}
	form := multipart.NewWriter(body)

	part, err := form.CreateFormFile(FirmwareField, filepath.Base(firmwarePath))
	if err != nil {
		return nil, "", fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, "", fmt.Errorf("read firmware: %w", err)
	}
	if err := form.Close(); err != nil {
		return nil, "", fmt.Errorf("close form: %w", err)
	}

	return body, form.FormDataContentType(), nil
}

func (c *Client) setHeaders(req *http.Request) {
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}
}
