// Package registry looks companies up in the INSEE SIRENE registry.
package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ErlanBelekov/companydesk/internal/domain"
	"github.com/ErlanBelekov/companydesk/internal/metrics"
)

const (
	apiVersion = "V3.11"
	bearerKey  = "registry_bearer"
	// renew the upstream bearer this long before it actually expires
	expirySkew = 60 * time.Second
)

// TokenCache holds the upstream OAuth bearer between requests.
type TokenCache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

type Config struct {
	BaseURL      string
	ClientID     string
	ClientSecret string
	Timeout      time.Duration
}

type Client struct {
	cfg    Config
	http   *http.Client
	tokens TokenCache
	logger *slog.Logger
}

func NewClient(cfg Config, tokens TokenCache, logger *slog.Logger) *Client {
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
		tokens: tokens,
		logger: logger.With("component", "registry"),
	}
}

// CompanyBySIRET fetches one establishment. A rejected bearer is evicted and
// the request retried once with a fresh one.
func (c *Client) CompanyBySIRET(ctx context.Context, siret string) (*domain.Company, error) {
	company, status, err := c.fetch(ctx, siret)
	if status == http.StatusUnauthorized {
		if delErr := c.tokens.Delete(ctx, bearerKey); delErr != nil {
			c.logger.WarnContext(ctx, "evict registry bearer", "error", delErr)
		}
		company, status, err = c.fetch(ctx, siret)
	}
	metrics.RegistryRequestsTotal.WithLabelValues(strconv.Itoa(status)).Inc()
	return company, err
}

func (c *Client) fetch(ctx context.Context, siret string) (*domain.Company, int, error) {
	start := time.Now()
	defer func() { metrics.RegistryRequestDuration.Observe(time.Since(start).Seconds()) }()

	bearer, err := c.bearer(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %w", domain.ErrRegistryUnavailable, err)
	}

	endpoint := c.cfg.BaseURL + "/entreprises/sirene/" + apiVersion + "/siret/" + url.PathEscape(siret)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+bearer)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %w", domain.ErrRegistryUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch resp.StatusCode {
	case http.StatusOK:
		var body siretResponse
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			return nil, resp.StatusCode, fmt.Errorf("%w: decode response: %w", domain.ErrRegistryUnavailable, err)
		}
		return body.company(siret), resp.StatusCode, nil
	case http.StatusNotFound:
		return nil, resp.StatusCode, domain.ErrCompanyNotFound
	case http.StatusTooManyRequests:
		return nil, resp.StatusCode, domain.ErrRegistryRateLimited
	default:
		_, _ = io.Copy(io.Discard, resp.Body)
		c.logger.WarnContext(ctx, "registry error", "status", resp.StatusCode)
		return nil, resp.StatusCode, fmt.Errorf("%w: status %d", domain.ErrRegistryUnavailable, resp.StatusCode)
	}
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

func (c *Client) bearer(ctx context.Context) (string, error) {
	cached, err := c.tokens.Get(ctx, bearerKey)
	if err == nil {
		return cached, nil
	}
	if !errors.Is(err, domain.ErrCacheMiss) {
		// a broken cache should not take the registry down with it
		c.logger.WarnContext(ctx, "read registry bearer from cache", "error", err)
	}

	form := url.Values{"grant_type": {"client_credentials"}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("build token request: %w", err)
	}
	req.SetBasicAuth(c.cfg.ClientID, c.cfg.ClientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("token request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return "", fmt.Errorf("token request: status %d", resp.StatusCode)
	}

	var tok tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		return "", fmt.Errorf("decode token response: %w", err)
	}
	if tok.AccessToken == "" {
		return "", errors.New("token response without access_token")
	}

	ttl := time.Duration(tok.ExpiresIn)*time.Second - expirySkew
	if ttl > 0 {
		if err := c.tokens.Set(ctx, bearerKey, tok.AccessToken, ttl); err != nil {
			c.logger.WarnContext(ctx, "cache registry bearer", "error", err)
		}
	}
	return tok.AccessToken, nil
}
