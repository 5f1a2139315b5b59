package spotify

import (
	"context"
	"encoding/json/v2"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/coverdash/coverdash-server/internal/cache"
	"github.com/coverdash/coverdash-server/internal/errors"
)

// tokenSlack is subtracted from the reported token lifetime so a
// memoized token never expires mid-batch.
const tokenSlack = 60 * time.Second

// tokenFailureTTL bounds how long a rejected credential pair is
// remembered. One bad pair then fails a whole batch with a single
// upstream request instead of one per entry.
const tokenFailureTTL = 5 * time.Minute

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// cachedToken is the memoized outcome of the client-credentials flow,
// either a usable token or the rejection it produced.
type cachedToken struct {
	AccessToken string `json:"access_token,omitempty"`
	Failure     string `json:"failure,omitempty"`
}

func tokenKey(creds Credentials) []byte {
	return cache.Key("token", creds.ClientID, creds.ClientSecret)
}

// token returns an access token for the credential pair, fetching one
// through the client-credentials flow on first use. Both outcomes are
// memoized: tokens until shortly before expiry, rejections briefly.
func (c *Client) token(ctx context.Context, creds Credentials) (string, error) {
	if creds.Empty() {
		return "", errors.AuthFailure("spotify credentials not configured")
	}

	key := tokenKey(creds)
	var hit cachedToken
	if err := c.cache.GetJSON(key, &hit); err == nil {
		if hit.Failure != "" {
			return "", errors.AuthFailure(hit.Failure)
		}
		return hit.AccessToken, nil
	}

	if err := c.limiter.Wait(ctx, hostOf(c.accountsURL)); err != nil {
		return "", fmt.Errorf("rate limit wait: %w", err)
	}

	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("client_id", creds.ClientID)
	form.Set("client_secret", creds.ClientSecret)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.accountsURL,
		strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	c.logger.Debug("spotify token request", "client_id", creds.ClientID)

	resp, err := c.http.Do(req)
	if err != nil {
		// Transport failures may be transient, so they are not memoized.
		return "", errors.AuthFailuref("token request failed: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errors.AuthFailuref("read token response: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", c.memoizeTokenFailure(key,
			errors.AuthFailuref("token request rejected with status %d", resp.StatusCode))
	}

	var tr tokenResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return "", errors.AuthFailuref("parse token response: %v", err)
	}
	if tr.AccessToken == "" {
		return "", c.memoizeTokenFailure(key,
			errors.AuthFailure("token response missing access_token"))
	}

	ttl := time.Duration(tr.ExpiresIn)*time.Second - tokenSlack
	if ttl <= 0 {
		ttl = time.Minute
	}
	if err := c.memoizeToken(key, cachedToken{AccessToken: tr.AccessToken}, ttl); err != nil {
		c.logger.Warn("failed to memoize token", "error", err)
	}

	return tr.AccessToken, nil
}

// memoizeTokenFailure records an auth rejection so retries with the
// same credentials skip the upstream call, then returns the error.
func (c *Client) memoizeTokenFailure(key []byte, rejection *errors.Error) error {
	if err := c.memoizeToken(key, cachedToken{Failure: rejection.Message}, tokenFailureTTL); err != nil {
		c.logger.Warn("failed to memoize token failure", "error", err)
	}
	return rejection
}

func (c *Client) memoizeToken(key []byte, value cachedToken, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.cache.SetBytesTTL(key, data, ttl)
}

// invalidateToken drops a memoized token after the search endpoint
// rejects it.
func (c *Client) invalidateToken(creds Credentials) {
	if err := c.cache.Delete(tokenKey(creds)); err != nil {
		c.logger.Warn("failed to invalidate token", "error", err)
	}
}
