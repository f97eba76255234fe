package catalog

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/productpraat/catalog-importer/pkg/httpclient"
)

// tokenEarlyRefresh renews the cached token this long before it expires.
const tokenEarlyRefresh = 30 * time.Second

type tokenPayload struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
}

// tokenSource fetches and caches OAuth2 client-credentials tokens for the
// upstream auth endpoint. Safe for concurrent use; in-chunk fetches may
// request a token at the same time.
type tokenSource struct {
	client       httpclient.Client
	authURL      string
	clientID     string
	clientSecret string

	mu      sync.Mutex
	token   string
	expires time.Time
	now     func() time.Time
}

func newTokenSource(client httpclient.Client, authURL, clientID, clientSecret string) *tokenSource {
	return &tokenSource{
		client:       client,
		authURL:      authURL,
		clientID:     clientID,
		clientSecret: clientSecret,
		now:          time.Now,
	}
}

// Token returns a valid bearer token, reusing the cached one until shortly
// before expiry.
func (ts *tokenSource) Token(ctx context.Context) (string, error) {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	if ts.token != "" && ts.now().Before(ts.expires.Add(-tokenEarlyRefresh)) {
		return ts.token, nil
	}

	credentials := base64.StdEncoding.EncodeToString([]byte(ts.clientID + ":" + ts.clientSecret))
	form := url.Values{"grant_type": {"client_credentials"}}
	headers := map[string]string{
		"Authorization": "Basic " + credentials,
		"Accept":        "application/json",
	}

	resp, err := ts.client.PostForm(ctx, ts.authURL, form, headers)
	if err != nil {
		return "", transportError("request access token", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return "", statusError(resp.StatusCode(), "access token request rejected")
	}

	var payload tokenPayload
	if err := json.Unmarshal(resp.Body(), &payload); err != nil {
		return "", fmt.Errorf("decode token response: %w", err)
	}
	if payload.AccessToken == "" {
		return "", fmt.Errorf("token response contained no access_token")
	}

	ts.token = payload.AccessToken
	ts.expires = ts.now().Add(time.Duration(payload.ExpiresIn) * time.Second)
	return ts.token, nil
}
