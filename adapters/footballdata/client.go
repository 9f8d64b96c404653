// Package footballdata implements the MatchProvider interface for the
// football-data.org v4 API.
package footballdata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/XavierBriggs/Argus/internal/credentials"
	"github.com/XavierBriggs/Argus/pkg/contracts"
	"github.com/XavierBriggs/Argus/pkg/models"
)

const (
	defaultBaseURL = "https://api.football-data.org"
	apiVersion     = "v4"
	userAgent      = "Argus/1.0 (Live Bet Tracker)"
	timeout        = 10 * time.Second

	// Free tier allows 10 requests per minute. The local limiter fails
	// fast as rate-limited instead of letting the call burn quota upstream.
	quotaPerMinute = 10
)

// Client fetches fixtures from football-data.org.
type Client struct {
	baseURL    string
	httpClient *http.Client
	creds      *credentials.Pool
	limiter    *rate.Limiter
}

// Ensure Client implements MatchProvider.
var _ contracts.MatchProvider = (*Client)(nil)

// NewClient creates a football-data.org client bound to a credential pool.
func NewClient(creds *credentials.Pool) *Client {
	return &Client{
		baseURL: defaultBaseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		creds:   creds,
		limiter: rate.NewLimiter(rate.Every(time.Minute/quotaPerMinute), quotaPerMinute),
	}
}

// WithBaseURL overrides the API endpoint. Returns the client for chaining.
func (c *Client) WithBaseURL(baseURL string) *Client {
	if baseURL != "" {
		c.baseURL = baseURL
	}
	return c
}

// Name implements MatchProvider.
func (c *Client) Name() models.Source {
	return models.SourceFootballData
}

// FetchLive retrieves fixtures currently in play.
func (c *Client) FetchLive(ctx context.Context) ([]models.CanonicalMatch, error) {
	return c.fetchMatches(ctx, url.Values{"status": {"LIVE"}})
}

// FetchSchedule retrieves fixtures scheduled within [from, to].
func (c *Client) FetchSchedule(ctx context.Context, from, to time.Time) ([]models.CanonicalMatch, error) {
	params := url.Values{
		"dateFrom": {from.UTC().Format("2006-01-02")},
		"dateTo":   {to.UTC().Format("2006-01-02")},
	}
	return c.fetchMatches(ctx, params)
}

func (c *Client) fetchMatches(ctx context.Context, params url.Values) ([]models.CanonicalMatch, error) {
	cred, ok := c.creds.Next()
	if !ok {
		return nil, contracts.NewFetchError(c.Name(), contracts.KindConfigMissing,
			fmt.Errorf("no eligible api key"))
	}

	if !c.limiter.Allow() {
		// Local quota guard: don't spend an upstream call we know will 429.
		return nil, contracts.NewFetchError(c.Name(), contracts.KindRateLimited,
			fmt.Errorf("local quota guard tripped"))
	}

	fullURL := fmt.Sprintf("%s/%s/matches?%s", c.baseURL, apiVersion, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, contracts.NewFetchError(c.Name(), contracts.KindTransient, err)
	}
	req.Header.Set("X-Auth-Token", cred.Secret)
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.creds.ReportFailure(cred, contracts.KindTransient)
		return nil, contracts.NewFetchError(c.Name(), contracts.KindTransient, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.creds.ReportFailure(cred, contracts.KindTransient)
		return nil, contracts.NewFetchError(c.Name(), contracts.KindTransient, err)
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		// fall through to decode
	case resp.StatusCode == http.StatusTooManyRequests:
		// Provider throttling: cooldown, not rotation.
		return nil, contracts.NewFetchError(c.Name(), contracts.KindRateLimited,
			fmt.Errorf("HTTP 429: %s", body))
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		c.creds.ReportFailure(cred, contracts.KindQuotaExhausted)
		return nil, contracts.NewFetchError(c.Name(), contracts.KindQuotaExhausted,
			fmt.Errorf("HTTP %d: %s", resp.StatusCode, body))
	default:
		c.creds.ReportFailure(cred, contracts.KindTransient)
		return nil, contracts.NewFetchError(c.Name(), contracts.KindTransient,
			fmt.Errorf("HTTP %d: %s", resp.StatusCode, body))
	}

	var apiResp matchesResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		c.creds.ReportFailure(cred, contracts.KindTransient)
		return nil, contracts.NewFetchError(c.Name(), contracts.KindTransient,
			fmt.Errorf("parse matches response: %w", err))
	}

	c.creds.ReportSuccess(cred)
	return c.mapMatches(apiResp.Matches), nil
}

// mapMatches converts API records to the canonical schema.
func (c *Client) mapMatches(raw []matchResponse) []models.CanonicalMatch {
	matches := make([]models.CanonicalMatch, 0, len(raw))
	for _, m := range raw {
		matches = append(matches, c.mapMatch(m))
	}
	return matches
}

func (c *Client) mapMatch(m matchResponse) models.CanonicalMatch {
	home := m.HomeTeam.Name
	if home == "" {
		home = m.HomeTeam.ShortName
	}
	if home == "" {
		home = "Unknown"
	}
	away := m.AwayTeam.Name
	if away == "" {
		away = m.AwayTeam.ShortName
	}
	if away == "" {
		away = "Unknown"
	}

	league := m.Competition.Name
	if league == "" {
		league = "Unknown"
	}

	startTime, err := time.Parse(time.RFC3339, m.UTCDate)
	if err != nil {
		startTime = time.Time{}
	}
	startTime = startTime.UTC()

	id := ""
	if m.ID != 0 {
		id = strconv.FormatInt(m.ID, 10)
	} else {
		id = models.DeriveMatchID(home, away, startTime)
	}

	var statusTime string
	if m.Minute != nil {
		statusTime = fmt.Sprintf("%d'", *m.Minute)
	}

	return models.CanonicalMatch{
		ID:         id,
		HomeTeam:   home,
		AwayTeam:   away,
		League:     league,
		Status:     mapStatus(m.Status),
		StatusTime: statusTime,
		HomeScore:  pickScore(m.Score.FullTime.Home, m.Score.HalfTime.Home),
		AwayScore:  pickScore(m.Score.FullTime.Away, m.Score.HalfTime.Away),
		StartTime:  startTime,
		Source:     models.SourceFootballData,
	}
}

// mapStatus normalizes football-data's native status vocabulary.
func mapStatus(s string) models.MatchStatus {
	switch s {
	case "SCHEDULED", "TIMED":
		return models.StatusScheduled
	case "IN_PLAY":
		return models.StatusLive
	case "PAUSED":
		return models.StatusHalfTime
	case "FINISHED":
		return models.StatusFinished
	default:
		return models.StatusUnknown
	}
}

// pickScore prefers the full-time score, falls back to half-time, and keeps
// nil when neither is available. Never coerced to zero.
func pickScore(fullTime, halfTime *int) *int {
	if fullTime != nil {
		v := *fullTime
		return &v
	}
	if halfTime != nil {
		v := *halfTime
		return &v
	}
	return nil
}

// API response structures matching the football-data.org v4 JSON format.

type matchesResponse struct {
	Matches []matchResponse `json:"matches"`
}

type matchResponse struct {
	ID          int64        `json:"id"`
	UTCDate     string       `json:"utcDate"`
	Status      string       `json:"status"`
	Minute      *int         `json:"minute"`
	HomeTeam    teamResponse `json:"homeTeam"`
	AwayTeam    teamResponse `json:"awayTeam"`
	Competition competition  `json:"competition"`
	Score       scoreBlock   `json:"score"`
}

type teamResponse struct {
	Name      string `json:"name"`
	ShortName string `json:"shortName"`
	TLA       string `json:"tla"`
}

type competition struct {
	Name string `json:"name"`
}

type scoreBlock struct {
	FullTime scorePair `json:"fullTime"`
	HalfTime scorePair `json:"halfTime"`
}

type scorePair struct {
	Home *int `json:"home"`
	Away *int `json:"away"`
}
