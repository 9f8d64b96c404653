package contracts

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/XavierBriggs/Argus/pkg/models"
)

// MatchProvider defines the interface for fetching fixtures from an upstream
// data source. Adapters are stateless aside from the credential pool they
// are bound to; failures are reported as *FetchError so the fetcher can pick
// cache policy and credential rotation from the classification, never from a
// raw HTTP status.
type MatchProvider interface {
	// Name identifies the provider in snapshot provenance.
	Name() models.Source

	// FetchLive retrieves fixtures currently in play.
	FetchLive(ctx context.Context) ([]models.CanonicalMatch, error)

	// FetchSchedule retrieves fixtures scheduled within [from, to].
	FetchSchedule(ctx context.Context, from, to time.Time) ([]models.CanonicalMatch, error)
}

// ErrorKind classifies an upstream failure.
type ErrorKind string

const (
	// KindRateLimited: provider explicitly throttling. Triggers a cache
	// cooldown, not credential rotation.
	KindRateLimited ErrorKind = "rate_limited"
	// KindQuotaExhausted: credential out of allotment. Triggers
	// rotation/disable.
	KindQuotaExhausted ErrorKind = "quota_exhausted"
	// KindTransient: network or 5xx. Retry next cycle, no bookkeeping.
	KindTransient ErrorKind = "transient"
	// KindConfigMissing: credential absent. Permanent until restart with
	// config fixed.
	KindConfigMissing ErrorKind = "config_missing"
)

// FetchError is a classified upstream failure.
type FetchError struct {
	Kind     ErrorKind
	Provider models.Source
	Err      error
}

func (e *FetchError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Provider, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Provider, e.Kind, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// NewFetchError wraps err with a classification.
func NewFetchError(provider models.Source, kind ErrorKind, err error) *FetchError {
	return &FetchError{Kind: kind, Provider: provider, Err: err}
}

// Classify extracts the classification from err, defaulting to transient for
// unclassified failures.
func Classify(err error) ErrorKind {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return KindTransient
}
