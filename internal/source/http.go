package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultRemoteTimeout is the default timeout for remote changelog fetches.
const DefaultRemoteTimeout = 5 * time.Second

// maxRemoteSize caps the body read from a remote changelog.
const maxRemoteSize = 10 << 20

// HTTP fetches a changelog from a URL, such as a raw file on a code host.
type HTTP struct {
	URL     string
	Client  *http.Client
	Timeout time.Duration
	Logf    Logf
}

// Name returns the URL.
func (h *HTTP) Name() string {
	return h.URL
}

// Read fetches the changelog. A 404 or 410 response wraps ErrFileNotFound.
// The context can be used to control timeout and cancellation.
func (h *HTTP) Read(ctx context.Context) (string, error) {
	timeout := h.Timeout
	if timeout <= 0 {
		timeout = DefaultRemoteTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.URL, nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "text/markdown, text/plain;q=0.9, */*;q=0.1")

	client := h.Client
	if client == nil {
		client = http.DefaultClient
	}

	h.Logf.debug("[source] fetching %s (timeout %s)", h.URL, timeout)
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("making request: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		return "", fmt.Errorf("%w: %s (status %d)", ErrFileNotFound, h.URL, resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return "", fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxRemoteSize))
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}

	h.Logf.debug("[source] fetched %d bytes from %s", len(body), h.URL)
	return string(body), nil
}
