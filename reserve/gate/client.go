package gate

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/egimarket/reserve/lib/errors"
)

const (
	// DefaultTimeout bounds the gate check so that a slow gate degrades to
	// "not reservable" instead of hanging reservation creation.
	DefaultTimeout = 2 * time.Second
)

// Client is the HTTP availability gate client. It calls
// `GET {url}/assets/{asset}/reservable` and expects a JSON body
// `{"reservable": bool}`.
type Client struct {
	URL     string
	Timeout time.Duration

	httpClient *http.Client
}

// NewClient constructs a gate client for the provided base URL.
func NewClient(
	gateURL string,
	timeout time.Duration,
) *Client {
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		URL:     gateURL,
		Timeout: timeout,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// IsReservable implements Gate.
func (c *Client) IsReservable(
	ctx context.Context,
	asset string,
) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, c.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf("%s/assets/%s/reservable",
			c.URL, url.PathEscape(asset)), nil)
	if err != nil {
		return false, errors.Trace(err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, errors.Trace(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, errors.Trace(errors.Newf(
			"Gate error for asset %s: status=%d", asset, resp.StatusCode))
	}

	var body struct {
		Reservable bool `json:"reservable"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return false, errors.Trace(err)
	}

	return body.Reservable, nil
}
