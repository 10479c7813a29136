package vk

import (
	"bytes"
	"compress/gzip"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/vk-tinder/internal/utils"
)

const (
	contentEncoding = "gzip"

	codeTooManyRequests = 6
	codeAccessDenied    = 15
	codeUserDeactivated = 18
	codePrivateProfile  = 30
)

// ErrRateLimited is returned when VK kept answering "too many requests" after all retries.
// Callers should treat it as "no result", not as a broken request.
var ErrRateLimited = errors.New("vk api rate limit: retries exhausted")

// APIError is any VK error response other than rate limiting.
type APIError struct {
	Code    int    `json:"error_code"`
	Message string `json:"error_msg"`
	Method  string `json:"-"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("vk api %s: error %d: %s", e.Method, e.Code, e.Message)
}

// IsAccessDenied reports whether the error means the profile data is hidden from us.
func IsAccessDenied(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}

	switch apiErr.Code {
	case codeAccessDenied, codeUserDeactivated, codePrivateProfile:
		return true
	default:
		return false
	}
}

type envelope struct {
	Response json.RawMessage `json:"response"`
	Error    *APIError       `json:"error"`
}

// call makes GET request to VK API method and decodes the "response" member into target.
// Rate limit errors are retried with a fixed delay.
func (c *Client) call(method string, q url.Values, target any) error {
	if q == nil {
		q = url.Values{}
	}

	q.Set("v", c.Version)
	if q.Get("access_token") == "" {
		q.Set("access_token", c.token)
	}

	for attempt := 0; ; attempt++ {
		env, err := c.get(method, q)
		if err != nil {
			return fmt.Errorf("%s: %w", method, err)
		}

		if env.Error == nil {
			return decode(env.Response, target)
		}

		if env.Error.Code != codeTooManyRequests {
			env.Error.Method = method
			return env.Error
		}

		if attempt >= c.RetryAttempts {
			c.logger.Warn("giving up on rate limited request",
				zap.String("method", method),
				zap.Int("attempts", attempt+1),
			)
			return fmt.Errorf("%s: %w", method, ErrRateLimited)
		}

		c.logger.Debug("rate limited, retrying",
			zap.String("method", method),
			zap.Int("attempt", attempt+1),
			zap.Duration("delay", c.RetryDelay),
		)

		if err := utils.WaitFor(c.ctx, c.RetryDelay); err != nil {
			return err
		}
	}
}

func (c *Client) get(method string, q url.Values) (*envelope, error) {
	endpoint := fmt.Sprintf("%s/%s", strings.TrimRight(c.APIURL, "/"), method)

	req, err := http.NewRequestWithContext(c.ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	req = c.setHeaders(req)
	req.URL.RawQuery = q.Encode()

	resp, err := c.request(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var reader io.Reader = resp.Body
	if resp.Header.Get("Content-Encoding") == "gzip" {
		gzipReader, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, err
		}
		defer gzipReader.Close()
		reader = gzipReader
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("bad status: %s", resp.Status)
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decoding envelope: %w", err)
	}

	return &env, nil
}

func (c *Client) request(req *http.Request) (*http.Response, error) {
	c.logger.Debug("make request", zap.String("method", req.URL.Path))
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}

	return resp, nil
}

func (c *Client) setHeaders(req *http.Request) *http.Request {
	req.Header.Set("User-Agent", c.UserAgent)
	req.Header.Set("Accept-Encoding", contentEncoding)

	return req
}

// decode keeps numbers as json.Number so ids survive the trip through map[string]any.
func decode(data json.RawMessage, target any) error {
	if target == nil || len(data) == 0 {
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(target); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}

	return nil
}
