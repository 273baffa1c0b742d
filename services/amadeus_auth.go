package services

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/ecovoyage/ecovoyage-backend/internal/httpclient"
)

// amadeusTokenCache holds a bearer token and its expiry. Callers refresh it
// under the mutex so concurrent fetches share a single credential request.
type amadeusTokenCache struct {
	mu     sync.Mutex
	token  string
	expiry time.Time
}

// AmadeusAuth exchanges client credentials for bearer tokens against the
// Amadeus self-service API and caches them until shortly before expiry.
type AmadeusAuth struct {
	client    *httpclient.Client
	cache     *amadeusTokenCache
	baseURL   string
	apiKey    string
	apiSecret string
}

const amadeusTokenSafetyMargin = 60 * time.Second

func NewAmadeusAuth(client *httpclient.Client, baseURL, apiKey, apiSecret string) *AmadeusAuth {
	return &AmadeusAuth{
		client:    client,
		cache:     &amadeusTokenCache{},
		baseURL:   baseURL,
		apiKey:    apiKey,
		apiSecret: apiSecret,
	}
}

// Configured reports whether credentials are present.
func (a *AmadeusAuth) Configured() bool {
	return a.apiKey != "" && a.apiSecret != ""
}

// Token returns a cached bearer token, refreshing it when it is within the
// safety margin of expiry.
func (a *AmadeusAuth) Token(ctx context.Context) (string, error) {
	a.cache.mu.Lock()
	defer a.cache.mu.Unlock()

	if a.cache.token != "" && time.Now().Before(a.cache.expiry.Add(-amadeusTokenSafetyMargin)) {
		return a.cache.token, nil
	}

	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("client_id", a.apiKey)
	form.Set("client_secret", a.apiSecret)

	var payload struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := a.client.PostFormJSON(ctx, a.baseURL+"/v1/security/oauth2/token", form, nil, &payload); err != nil {
		return "", err
	}
	if payload.AccessToken == "" {
		return "", fmt.Errorf("amadeus auth: empty access token")
	}

	a.cache.token = payload.AccessToken
	a.cache.expiry = time.Now().Add(time.Duration(payload.ExpiresIn) * time.Second)
	return a.cache.token, nil
}
