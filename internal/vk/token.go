package vk

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
)

const (
	authorizeURL = "https://oauth.vk.com/authorize"
	redirectURL  = "https://oauth.vk.com/blank.html"

	// DefaultScope covers friends, photos, groups and offline access.
	DefaultScope = "friends,photos,groups,offline"
)

var ErrNoToken = errors.New("no access_token in redirect url")

// AuthorizeURL builds the implicit flow link the operator opens in a browser.
func AuthorizeURL(appID int, scope string) string {
	if scope == "" {
		scope = DefaultScope
	}

	q := url.Values{}
	q.Set("client_id", strconv.Itoa(appID))
	q.Set("display", "page")
	q.Set("redirect_uri", redirectURL)
	q.Set("scope", scope)
	q.Set("response_type", "token")
	q.Set("v", apiVersion)

	return authorizeURL + "?" + q.Encode()
}

// ParseRedirect extracts the access token from the url VK redirects to after authorization.
// The token lives in the fragment: https://oauth.vk.com/blank.html#access_token=...&expires_in=0&user_id=1
func ParseRedirect(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("parsing redirect url: %w", err)
	}

	values, err := url.ParseQuery(u.Fragment)
	if err != nil {
		return "", fmt.Errorf("parsing redirect fragment: %w", err)
	}

	// Errors may come in the query part instead.
	for key, v := range u.Query() {
		if _, ok := values[key]; !ok {
			values[key] = v
		}
	}

	if desc := values.Get("error_description"); desc != "" {
		return "", fmt.Errorf("authorization failed: %s", desc)
	}

	if e := values.Get("error"); e != "" {
		return "", fmt.Errorf("authorization failed: %s", e)
	}

	token := values.Get("access_token")
	if token == "" {
		return "", ErrNoToken
	}

	return token, nil
}
