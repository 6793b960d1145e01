// Package duolingo is a small client for the learning platform's web API.
// It signs in once and reads the account's friends ranking and per-language
// points from the user document.
package duolingo

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"
)

var (
	// ErrAuthFailed is returned when the platform rejects the credentials.
	ErrAuthFailed = errors.New("duolingo: authentication failed")

	// ErrNotAuthenticated is returned by calls made before Login.
	ErrNotAuthenticated = errors.New("duolingo: not logged in")
)

// Config contains configuration for the API client.
type Config struct {
	BaseURL  string
	Username string
	Password string
	Timeout  time.Duration
	Logger   *slog.Logger
}

// Client talks to the platform on behalf of one account. Build it with New
// and call Login before any read.
type Client struct {
	config     Config
	httpClient *http.Client
	logger     *slog.Logger
	jwt        string
}

// New creates a client. No request is made until Login.
func New(config Config) *Client {
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	config.BaseURL = strings.TrimRight(config.BaseURL, "/")

	return &Client{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
		logger:     config.Logger,
	}
}

// Login exchanges the configured credentials for a session token.
func (c *Client) Login(ctx context.Context) error {
	body, err := json.Marshal(loginRequest{Login: c.config.Username, Password: c.config.Password})
	if err != nil {
		return fmt.Errorf("encode login: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+"/login", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute login: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read login response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d", ErrAuthFailed, resp.StatusCode)
	}

	var result loginResponse
	if len(respBody) > 0 {
		if err := json.Unmarshal(respBody, &result); err != nil {
			return fmt.Errorf("parse login response: %w", err)
		}
	}
	if result.Failure != "" {
		return fmt.Errorf("%w: %s", ErrAuthFailed, result.Failure)
	}

	token := resp.Header.Get("jwt")
	if token == "" {
		return fmt.Errorf("%w: no session token in response", ErrAuthFailed)
	}
	c.jwt = token

	c.logger.Debug("logged in", "user", c.config.Username)
	return nil
}

// userData fetches the signed-in account's user document.
func (c *Client) userData(ctx context.Context) (*userDTO, error) {
	path := "/users/" + url.PathEscape(c.config.Username)

	var user userDTO
	if err := c.doRequest(ctx, http.MethodGet, path, &user); err != nil {
		return nil, fmt.Errorf("get user %s: %w", c.config.Username, err)
	}
	return &user, nil
}

// Friends returns every user in the account's points rankings across all
// languages, deduplicated by username in first-seen order.
func (c *Client) Friends(ctx context.Context) ([]Friend, error) {
	user, err := c.userData(ctx)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var friends []Friend
	for _, lang := range sortedLanguageKeys(user.LanguageData) {
		for _, r := range user.LanguageData[lang].PointsRankingData {
			if r.Username == "" || seen[r.Username] {
				continue
			}
			seen[r.Username] = true
			friends = append(friends, Friend{
				Username: r.Username,
				ID:       r.ID,
				Points:   r.PointsData.Total,
			})
		}
	}
	return friends, nil
}

// FriendsByUsernames returns the friends whose usernames are listed,
// preserving API order. Listed names that are not friends are skipped.
func (c *Client) FriendsByUsernames(ctx context.Context, usernames []string) ([]Friend, error) {
	friends, err := c.Friends(ctx)
	if err != nil {
		return nil, err
	}

	wanted := make(map[string]bool, len(usernames))
	for _, name := range usernames {
		wanted[name] = true
	}

	var out []Friend
	for _, f := range friends {
		if wanted[f.Username] {
			out = append(out, f)
		}
	}
	return out, nil
}

// Languages returns the languages the account is learning, with the
// points earned in each.
func (c *Client) Languages(ctx context.Context) ([]Language, error) {
	user, err := c.userData(ctx)
	if err != nil {
		return nil, err
	}

	var langs []Language
	for _, l := range user.Languages {
		if l.Learning {
			langs = append(langs, Language{Abbr: l.Language, Name: l.LanguageString, Points: l.Points})
		}
	}
	return langs, nil
}

// TotalPoints sums the account's points over every language being learned.
func (c *Client) TotalPoints(ctx context.Context) (int, error) {
	langs, err := c.Languages(ctx)
	if err != nil {
		return 0, err
	}

	total := 0
	for _, l := range langs {
		total += l.Points
	}
	return total, nil
}

// doRequest performs an authenticated request and decodes a JSON response.
func (c *Client) doRequest(ctx context.Context, method, path string, result any) error {
	if c.jwt == "" {
		return ErrNotAuthenticated
	}

	req, err := http.NewRequestWithContext(ctx, method, c.config.BaseURL+path, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.jwt)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	c.logger.Debug("api request",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"duration", time.Since(start),
	)

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%w: status %d", ErrAuthFailed, resp.StatusCode)
	case resp.StatusCode >= 400:
		return fmt.Errorf("api error: status %d: %s", resp.StatusCode, truncate(string(respBody), 200))
	}

	if err := json.Unmarshal(respBody, result); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// sortedLanguageKeys gives language_data a stable iteration order.
func sortedLanguageKeys(m map[string]languageDataDTO) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
