package vk

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const (
	apiURL     = "https://api.vk.com/method"
	apiVersion = "5.131"
	userAgent  = "spigell/vk-tinder"

	// VK answers with error 6 when more than 3 requests per second are made.
	defaultRetryAttempts = 5
	defaultRetryDelay    = 500 * time.Millisecond

	// Max value for users.search per request.
	MaxPageSize = 1000
)

// ListCache stores id lists (friends, subscriptions) between runs.
type ListCache interface {
	IDs(ctx context.Context, key string) ([]int64, bool, error)
	SetIDs(ctx context.Context, key string, ids []int64) error
}

type Client struct {
	// ctx used for http requests and retry waits
	ctx          context.Context
	token        string
	serviceToken string
	logger       *zap.Logger
	HTTPClient   *http.Client
	UserAgent    string
	APIURL       string
	Version      string

	RetryAttempts int
	RetryDelay    time.Duration

	Cache ListCache
	Now   func() time.Time
}

func New(ctx context.Context, logger *zap.Logger, token string) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		ctx:     ctx,
		token:   token,
		APIURL:  apiURL,
		Version: apiVersion,
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger:        logger,
		UserAgent:     userAgent,
		RetryAttempts: defaultRetryAttempts,
		RetryDelay:    defaultRetryDelay,
		Now:           time.Now,
	}
}

// WithServiceToken sets the application service token used for users.get.
// Detail fetches fall back to the user token when it is empty.
func (c *Client) WithServiceToken(token string) *Client {
	c.serviceToken = token
	return c
}
