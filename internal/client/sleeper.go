package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"bigleague/stats/internal/metrics"
	"bigleague/stats/internal/models"

	"github.com/rs/zerolog/log"
)

// ErrNotFound is returned when the provider answers 404 or a literal null body
var ErrNotFound = errors.New("resource not found")

// maxConcurrentRequests bounds in-flight requests against the provider
const maxConcurrentRequests = 10

// Client is the Sleeper API client
type Client struct {
	baseURL     string
	httpClient  *http.Client
	rateLimiter chan struct{} // Rate limiting semaphore
	maxRetries  int
	retryDelay  time.Duration
}

// NewClient creates a new Sleeper API client
func NewClient(baseURL string, timeout time.Duration, maxRetries int) *Client {
	rateLimiter := make(chan struct{}, maxConcurrentRequests)
	for i := 0; i < maxConcurrentRequests; i++ {
		rateLimiter <- struct{}{}
	}

	if maxRetries < 0 {
		maxRetries = 0
	}

	return &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		rateLimiter: rateLimiter,
		maxRetries:  maxRetries,
		retryDelay:  1 * time.Second,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// attemptResult is the outcome of a single HTTP round trip
type attemptResult struct {
	body       []byte
	status     int
	retryAfter time.Duration
}

// get performs a GET request with retry logic and rate limiting.
// endpoint is a short label used for metrics and logs.
func (c *Client) get(ctx context.Context, endpoint, path string) ([]byte, error) {
	url := fmt.Sprintf("%s/%s", c.baseURL, strings.TrimLeft(path, "/"))
	start := time.Now()

	var lastErr error
	var wait time.Duration
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			// Exponential backoff: 1s, 2s, 4s unless the server asked for more
			backoff := c.retryDelay * time.Duration(1<<uint(attempt-1))
			if wait > backoff {
				backoff = wait
			}
			backoff += time.Duration(rand.Int64N(int64(c.retryDelay)/4 + 1))

			log.Info().
				Str("url", url).
				Int("attempt", attempt).
				Dur("backoff", backoff).
				Msg("Retrying API request after backoff")

			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}

		res, err := c.do(ctx, url, attempt)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = err
			// Retry on network errors
			continue
		}

		switch {
		case res.status == http.StatusOK:
			if isNullBody(res.body) {
				metrics.RecordAPICall(endpoint, "not_found", time.Since(start).Seconds())
				return nil, fmt.Errorf("%s: %w", path, ErrNotFound)
			}
			log.Debug().
				Str("url", url).
				Int("status", res.status).
				Int("size", len(res.body)).
				Msg("API request successful")
			metrics.RecordAPICall(endpoint, "success", time.Since(start).Seconds())
			return res.body, nil

		case res.status == http.StatusNotFound:
			metrics.RecordAPICall(endpoint, "not_found", time.Since(start).Seconds())
			return nil, fmt.Errorf("%s: %w", path, ErrNotFound)

		case res.status == http.StatusTooManyRequests || res.status >= http.StatusInternalServerError:
			// Retryable errors
			lastErr = fmt.Errorf("API returned retryable status %d: %s", res.status, truncate(res.body))
			wait = res.retryAfter
			log.Warn().
				Str("url", url).
				Int("status", res.status).
				Int("attempt", attempt+1).
				Msg("Received retryable error, will retry")

		default:
			// Other errors - don't retry
			metrics.RecordAPICall(endpoint, "error", time.Since(start).Seconds())
			return nil, fmt.Errorf("API returned status %d: %s", res.status, truncate(res.body))
		}
	}

	metrics.RecordAPICall(endpoint, "error", time.Since(start).Seconds())
	return nil, lastErr
}

// do performs one attempt while holding a rate limiter slot
func (c *Client) do(ctx context.Context, url string, attempt int) (*attemptResult, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-c.rateLimiter:
	}
	defer func() { c.rateLimiter <- struct{}{} }()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "bigleague-stats/1.0")

	log.Debug().
		Str("url", url).
		Str("method", req.Method).
		Int("attempt", attempt+1).
		Msg("Making API request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	res := &attemptResult{body: body, status: resp.StatusCode}
	if ra := resp.Header.Get("Retry-After"); ra != "" {
		if secs, err := strconv.Atoi(ra); err == nil {
			res.retryAfter = time.Duration(secs) * time.Second
		}
	}
	return res, nil
}

func isNullBody(b []byte) bool {
	b = bytes.TrimSpace(b)
	return len(b) == 0 || bytes.Equal(b, []byte("null"))
}

func truncate(b []byte) string {
	const max = 256
	if len(b) > max {
		return string(b[:max]) + "..."
	}
	return string(b)
}

// FetchLeague fetches one league descriptor
func (c *Client) FetchLeague(ctx context.Context, leagueID string) (*models.LeagueInput, error) {
	body, err := c.get(ctx, "league", fmt.Sprintf("league/%s", leagueID))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch league: %w", err)
	}

	var league models.LeagueInput
	if err := json.Unmarshal(body, &league); err != nil {
		return nil, fmt.Errorf("failed to unmarshal league: %w", err)
	}

	return &league, nil
}

// FetchRosters fetches every roster of a league
func (c *Client) FetchRosters(ctx context.Context, leagueID string) ([]models.RosterInput, error) {
	body, err := c.get(ctx, "rosters", fmt.Sprintf("league/%s/rosters", leagueID))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch rosters: %w", err)
	}

	var rosters []models.RosterInput
	if err := json.Unmarshal(body, &rosters); err != nil {
		return nil, fmt.Errorf("failed to unmarshal rosters: %w", err)
	}

	return rosters, nil
}

// FetchUsers fetches the members of a league
func (c *Client) FetchUsers(ctx context.Context, leagueID string) ([]models.UserInput, error) {
	body, err := c.get(ctx, "users", fmt.Sprintf("league/%s/users", leagueID))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch users: %w", err)
	}

	var users []models.UserInput
	if err := json.Unmarshal(body, &users); err != nil {
		return nil, fmt.Errorf("failed to unmarshal users: %w", err)
	}

	return users, nil
}

// FetchPlayers fetches the full NFL player catalog keyed by player id.
// The payload is several megabytes; callers should refresh it sparingly.
func (c *Client) FetchPlayers(ctx context.Context) (map[string]models.PlayerInput, error) {
	body, err := c.get(ctx, "players", "players/nfl")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch players: %w", err)
	}

	return decodePlayers(body)
}

// FetchState fetches the current NFL season state
func (c *Client) FetchState(ctx context.Context) (*models.SeasonStateInput, error) {
	body, err := c.get(ctx, "state", "state/nfl")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch state: %w", err)
	}

	var state models.SeasonStateInput
	if err := json.Unmarshal(body, &state); err != nil {
		return nil, fmt.Errorf("failed to unmarshal state: %w", err)
	}

	return &state, nil
}

// FetchMatchups fetches one week's matchups for a league
func (c *Client) FetchMatchups(ctx context.Context, leagueID string, week int) ([]models.MatchupInput, error) {
	body, err := c.get(ctx, "matchups", fmt.Sprintf("league/%s/matchups/%d", leagueID, week))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch matchups: %w", err)
	}

	var matchups []models.MatchupInput
	if err := json.Unmarshal(body, &matchups); err != nil {
		return nil, fmt.Errorf("failed to unmarshal matchups: %w", err)
	}

	return matchups, nil
}

// ReadPlayersFile reads a saved /players/nfl payload from disk.
// Used in development mode in place of FetchPlayers.
func ReadPlayersFile(path string) (map[string]models.PlayerInput, error) {
	body, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read players file: %w", err)
	}

	return decodePlayers(body)
}

func decodePlayers(body []byte) (map[string]models.PlayerInput, error) {
	var players map[string]models.PlayerInput
	if err := json.Unmarshal(body, &players); err != nil {
		return nil, fmt.Errorf("failed to unmarshal players: %w", err)
	}
	return players, nil
}
