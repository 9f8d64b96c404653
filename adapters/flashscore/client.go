// Package flashscore implements the MatchProvider interface on top of the
// Apify Flashscore scraper actor. A fetch starts an actor run, polls its
// status with exponential backoff, then reads the run's dataset items.
package flashscore

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/XavierBriggs/Argus/internal/credentials"
	"github.com/XavierBriggs/Argus/pkg/contracts"
	"github.com/XavierBriggs/Argus/pkg/models"
)

const (
	defaultBaseURL = "https://api.apify.com"
	defaultActor   = "statanow~flashscore-scraper-live"

	requestTimeout = 15 * time.Second
	// runWaitBudget bounds the whole start-poll-read sequence so a stuck
	// actor run cannot block a poll cycle indefinitely.
	runWaitBudget = 60 * time.Second
)

// Client fetches live match data through the Apify platform.
type Client struct {
	baseURL    string
	actor      string
	httpClient *http.Client
	creds      *credentials.Pool
}

var _ contracts.MatchProvider = (*Client)(nil)

// NewClient creates a flashscore client bound to a credential pool of Apify
// tokens.
func NewClient(creds *credentials.Pool) *Client {
	return &Client{
		baseURL: defaultBaseURL,
		actor:   defaultActor,
		httpClient: &http.Client{
			Timeout: requestTimeout,
		},
		creds: creds,
	}
}

// WithBaseURL overrides the Apify endpoint. Returns the client for chaining.
func (c *Client) WithBaseURL(baseURL string) *Client {
	if baseURL != "" {
		c.baseURL = baseURL
	}
	return c
}

// WithActor overrides the scraper actor slug.
func (c *Client) WithActor(actor string) *Client {
	if actor != "" {
		c.actor = actor
	}
	return c
}

// Name implements MatchProvider.
func (c *Client) Name() models.Source {
	return models.SourceFlashscore
}

// FetchLive runs the scraper and keeps fixtures currently in play.
func (c *Client) FetchLive(ctx context.Context) ([]models.CanonicalMatch, error) {
	all, err := c.runActor(ctx)
	if err != nil {
		return nil, err
	}
	live := make([]models.CanonicalMatch, 0, len(all))
	for _, m := range all {
		if m.Status == models.StatusLive || m.Status == models.StatusHalfTime {
			live = append(live, m)
		}
	}
	return live, nil
}

// FetchSchedule runs the scraper and keeps fixtures scheduled within
// [from, to]. The actor has no date filter of its own, so filtering happens
// here.
func (c *Client) FetchSchedule(ctx context.Context, from, to time.Time) ([]models.CanonicalMatch, error) {
	all, err := c.runActor(ctx)
	if err != nil {
		return nil, err
	}
	scheduled := make([]models.CanonicalMatch, 0, len(all))
	for _, m := range all {
		if m.Status != models.StatusScheduled {
			continue
		}
		if !m.StartTime.IsZero() && (m.StartTime.Before(from) || m.StartTime.After(to)) {
			continue
		}
		scheduled = append(scheduled, m)
	}
	return scheduled, nil
}

// runActor tries each eligible token in rotation order until a run
// completes. Tokens that come back 402/429 are reported quota-exhausted and
// the next one is tried in the same pass.
func (c *Client) runActor(ctx context.Context) ([]models.CanonicalMatch, error) {
	attempts := c.creds.Size()
	if attempts == 0 {
		return nil, contracts.NewFetchError(c.Name(), contracts.KindConfigMissing,
			fmt.Errorf("no apify token configured"))
	}

	var lastErr error
	for i := 0; i < attempts; i++ {
		cred, ok := c.creds.Next()
		if !ok {
			break
		}

		items, err := c.runOnce(ctx, cred.Secret)
		if err == nil {
			c.creds.ReportSuccess(cred)
			return c.mapItems(items), nil
		}

		lastErr = err
		kind := contracts.Classify(err)
		c.creds.ReportFailure(cred, kind)
		if kind != contracts.KindQuotaExhausted {
			// Rotation only helps when the token itself is the problem.
			return nil, err
		}
	}

	if lastErr != nil {
		return nil, lastErr
	}
	return nil, contracts.NewFetchError(c.Name(), contracts.KindConfigMissing,
		fmt.Errorf("all apify tokens disabled"))
}

// runOnce starts one actor run with the given token and waits for its
// dataset.
func (c *Client) runOnce(ctx context.Context, token string) ([]actorItem, error) {
	ctx, cancel := context.WithTimeout(ctx, runWaitBudget)
	defer cancel()

	run, err := c.startRun(ctx, token)
	if err != nil {
		return nil, err
	}

	// Poll run status with exponential backoff until it leaves RUNNING.
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 2 * time.Second
	bo.MaxInterval = 10 * time.Second

	for {
		status, datasetID, err := c.runStatus(ctx, token, run.ID)
		if err != nil {
			return nil, err
		}

		switch status {
		case "SUCCEEDED":
			return c.datasetItems(ctx, token, datasetID)
		case "FAILED", "ABORTED", "TIMED-OUT":
			return nil, contracts.NewFetchError(c.Name(), contracts.KindTransient,
				fmt.Errorf("actor run %s ended %s", run.ID, status))
		}

		select {
		case <-ctx.Done():
			return nil, contracts.NewFetchError(c.Name(), contracts.KindTransient,
				fmt.Errorf("actor run %s: %w", run.ID, ctx.Err()))
		case <-time.After(bo.NextBackOff()):
		}
	}
}

type runInfo struct {
	ID               string `json:"id"`
	Status           string `json:"status"`
	DefaultDatasetID string `json:"defaultDatasetId"`
}

func (c *Client) startRun(ctx context.Context, token string) (*runInfo, error) {
	url := fmt.Sprintf("%s/v2/acts/%s/runs", c.baseURL, c.actor)
	body, err := c.doRequest(ctx, http.MethodPost, url, token)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Data runInfo `json:"data"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, contracts.NewFetchError(c.Name(), contracts.KindTransient,
			fmt.Errorf("parse run response: %w", err))
	}
	return &resp.Data, nil
}

func (c *Client) runStatus(ctx context.Context, token, runID string) (status, datasetID string, err error) {
	url := fmt.Sprintf("%s/v2/actor-runs/%s", c.baseURL, runID)
	body, err := c.doRequest(ctx, http.MethodGet, url, token)
	if err != nil {
		return "", "", err
	}

	var resp struct {
		Data runInfo `json:"data"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", "", contracts.NewFetchError(c.Name(), contracts.KindTransient,
			fmt.Errorf("parse run status: %w", err))
	}
	return resp.Data.Status, resp.Data.DefaultDatasetID, nil
}

func (c *Client) datasetItems(ctx context.Context, token, datasetID string) ([]actorItem, error) {
	url := fmt.Sprintf("%s/v2/datasets/%s/items", c.baseURL, datasetID)
	body, err := c.doRequest(ctx, http.MethodGet, url, token)
	if err != nil {
		return nil, err
	}

	var items []actorItem
	if err := json.Unmarshal(body, &items); err != nil {
		return nil, contracts.NewFetchError(c.Name(), contracts.KindTransient,
			fmt.Errorf("parse dataset items: %w", err))
	}
	return items, nil
}

func (c *Client) doRequest(ctx context.Context, method, url, token string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return nil, contracts.NewFetchError(c.Name(), contracts.KindTransient, err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, contracts.NewFetchError(c.Name(), contracts.KindTransient, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, contracts.NewFetchError(c.Name(), contracts.KindTransient, err)
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return body, nil
	case resp.StatusCode == http.StatusPaymentRequired || resp.StatusCode == http.StatusTooManyRequests:
		// Token out of credit: rotate to the next one.
		return nil, contracts.NewFetchError(c.Name(), contracts.KindQuotaExhausted,
			fmt.Errorf("HTTP %d: %s", resp.StatusCode, body))
	default:
		return nil, contracts.NewFetchError(c.Name(), contracts.KindTransient,
			fmt.Errorf("HTTP %d: %s", resp.StatusCode, body))
	}
}
