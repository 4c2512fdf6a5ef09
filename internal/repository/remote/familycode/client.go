package familycode

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"tribeboard/internal/config"
	codedomain "tribeboard/internal/domain/familycode"
	"tribeboard/pkg/logger"
)

const defaultTimeout = 3 * time.Second

// Client checks family-code existence against the cloud sync backend.
// Any transport fault (timeout, DNS, connection refused) and any
// unexpected status are reported as unreachable so the generator can
// back off and eventually fall back to local-only checks.
type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
	log     logger.Logger
}

func NewClient(cfg config.RemoteConfig, log logger.Logger) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		client:  &http.Client{Timeout: timeout},
		log:     log,
	}
}

func (c *Client) ExistsByCode(ctx context.Context, code string) (codedomain.RemoteLookupResult, error) {
	url := fmt.Sprintf("%s/v1/family-codes/%s", c.baseURL, code)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		// Only happens with a malformed configured base URL.
		c.log.Warn("remote code lookup request build failed", "err", err, "url", url)
		return codedomain.RemoteUnreachable, nil
	}
	if c.apiKey != "" {
		req.Header.Set("X-Api-Key", c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		// Only caller cancellation aborts generation. A client-side
		// timeout also unwraps to context.DeadlineExceeded, so check
		// the caller's context rather than the returned error.
		if ctxErr := ctx.Err(); ctxErr != nil {
			return codedomain.RemoteUnreachable, ctxErr
		}
		c.log.Warn("remote code lookup failed", "err", err)
		return codedomain.RemoteUnreachable, nil
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	switch resp.StatusCode {
	case http.StatusOK:
		return codedomain.RemoteFound, nil
	case http.StatusNotFound:
		return codedomain.RemoteNotFound, nil
	default:
		c.log.Warn("remote code lookup returned unexpected status", "status", resp.StatusCode)
		return codedomain.RemoteUnreachable, nil
	}
}
