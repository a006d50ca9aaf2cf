package esi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/zuiji/legacy-waitlist/internal/models"
)

// NameResolver resolves an entity's display name from its category and ID.
type NameResolver interface {
	ResolveName(ctx context.Context, category models.EntityCategory, id int64) (string, error)
}

// NameCache caches resolved entity names. Satisfied by the redis client.
type NameCache interface {
	GetEntityName(ctx context.Context, category string, id int64) (string, error)
	CacheEntityName(ctx context.Context, category string, id int64, name string) error
}

// Error is a non-2xx response from ESI or the SSO.
type Error struct {
	StatusCode int
	Body       string
}

func (e *Error) Error() string {
	return fmt.Sprintf("esi: status %d: %s", e.StatusCode, e.Body)
}

// IsNotFound reports whether err is an ESI 404, meaning the requested
// entity does not exist.
func IsNotFound(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.StatusCode == http.StatusNotFound
}

// Client talks to ESI and the EVE SSO.
type Client struct {
	httpClient *http.Client
	esiURL     string
	ssoURL     string
	clientID   string
	secretKey  string
	cache      NameCache
}

// NewClient creates an ESI client. cache may be nil to disable name caching.
func NewClient(esiURL, ssoURL, clientID, secretKey string, cache NameCache) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		esiURL:     strings.TrimRight(esiURL, "/"),
		ssoURL:     strings.TrimRight(ssoURL, "/"),
		clientID:   clientID,
		secretKey:  secretKey,
		cache:      cache,
	}
}

// ResolveName fetches an entity's name from ESI, serving repeat lookups from
// the cache. ESI exposes characters, corporations and alliances under the
// same shape: GET /latest/{category}s/{id} returning at least {"name": ...}.
func (c *Client) ResolveName(ctx context.Context, category models.EntityCategory, id int64) (string, error) {
	cat := strings.ToLower(string(category))

	if c.cache != nil {
		if name, err := c.cache.GetEntityName(ctx, cat, id); err == nil && name != "" {
			return name, nil
		}
	}

	var body struct {
		Name string `json:"name"`
	}
	path := fmt.Sprintf("%s/latest/%ss/%d", c.esiURL, cat, id)
	if err := c.getJSON(ctx, path, &body); err != nil {
		return "", err
	}

	if c.cache != nil {
		_ = c.cache.CacheEntityName(ctx, cat, id, body.Name)
	}
	return body.Name, nil
}

// CharacterInfo is the subset of the public character sheet the waitlist
// stores.
type CharacterInfo struct {
	Name          string `json:"name"`
	CorporationID int64  `json:"corporation_id"`
}

// GetCharacter fetches a character's public info.
func (c *Client) GetCharacter(ctx context.Context, id int64) (*CharacterInfo, error) {
	info := &CharacterInfo{}
	path := fmt.Sprintf("%s/latest/characters/%d", c.esiURL, id)
	if err := c.getJSON(ctx, path, info); err != nil {
		return nil, err
	}
	return info, nil
}

func (c *Client) getJSON(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("calling esi: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &Error{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding esi response: %w", err)
	}
	return nil
}

// Verified identifies the character behind an SSO authorization code.
type Verified struct {
	CharacterID   int64  `json:"CharacterID"`
	CharacterName string `json:"CharacterName"`
}

// AuthorizeURL builds the SSO login redirect for the given state nonce.
func (c *Client) AuthorizeURL(redirectURI, state string) string {
	q := url.Values{}
	q.Set("response_type", "code")
	q.Set("redirect_uri", redirectURI)
	q.Set("client_id", c.clientID)
	q.Set("state", state)
	return c.ssoURL + "/v2/oauth/authorize?" + q.Encode()
}

// ExchangeCode swaps an SSO authorization code for the character identity
// behind it: token exchange followed by a verify call.
func (c *Client) ExchangeCode(ctx context.Context, code string) (*Verified, error) {
	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("code", code)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.ssoURL+"/v2/oauth/token", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("building token request: %w", err)
	}
	req.SetBasicAuth(c.clientID, c.secretKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("exchanging code: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &Error{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	var token struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&token); err != nil {
		return nil, fmt.Errorf("decoding token response: %w", err)
	}

	verifyReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.ssoURL+"/oauth/verify", nil)
	if err != nil {
		return nil, fmt.Errorf("building verify request: %w", err)
	}
	verifyReq.Header.Set("Authorization", "Bearer "+token.AccessToken)

	verifyResp, err := c.httpClient.Do(verifyReq)
	if err != nil {
		return nil, fmt.Errorf("verifying token: %w", err)
	}
	defer verifyResp.Body.Close()

	if verifyResp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(verifyResp.Body, 4096))
		return nil, &Error{StatusCode: verifyResp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	v := &Verified{}
	if err := json.NewDecoder(verifyResp.Body).Decode(v); err != nil {
		return nil, fmt.Errorf("decoding verify response: %w", err)
	}
	return v, nil
}
