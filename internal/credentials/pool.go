// Package credentials manages an ordered set of API keys for one provider,
// rotating round-robin and temporarily disabling keys that keep failing or
// run out of allotment.
package credentials

import (
	"sync"
	"time"

	"github.com/XavierBriggs/Argus/pkg/contracts"
)

const (
	// DisableThreshold is the consecutive-failure count after which a
	// credential is benched.
	DisableThreshold = 3

	// DisableDuration is how long a benched credential stays ineligible.
	// Not persisted; state resets on process restart.
	DisableDuration = time.Hour
)

// Credential is one API key plus its rotation bookkeeping.
type Credential struct {
	Secret        string
	failureCount  int
	disabledUntil time.Time
}

// Pool holds provider credentials with pool-wide rotation state, so a
// credential disabled mid-poll stays disabled for later independent calls
// within the same process lifetime.
type Pool struct {
	mu    sync.Mutex
	creds []*Credential
	next  int
	now   func() time.Time
}

// NewPool creates a pool from an ordered list of secrets. Empty secrets are
// dropped.
func NewPool(secrets []string) *Pool {
	p := &Pool{now: time.Now}
	for _, s := range secrets {
		if s == "" {
			continue
		}
		p.creds = append(p.creds, &Credential{Secret: s})
	}
	return p
}

// Next returns the next eligible credential in round-robin order, skipping
// any whose disable window is still open. Returns (nil, false) when every
// credential is disabled or the pool is empty.
func (p *Pool) Next() (*Credential, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	n := len(p.creds)
	if n == 0 {
		return nil, false
	}

	now := p.now()
	for i := 0; i < n; i++ {
		idx := (p.next + i) % n
		c := p.creds[idx]
		if c.disabledUntil.After(now) {
			continue
		}
		p.next = (idx + 1) % n
		return c, true
	}
	return nil, false
}

// ReportSuccess clears a credential's failure state.
func (p *Pool) ReportSuccess(c *Credential) {
	p.mu.Lock()
	defer p.mu.Unlock()

	c.failureCount = 0
	c.disabledUntil = time.Time{}
}

// ReportFailure increments the failure count. QuotaExhausted benches the
// credential immediately; other classifications bench it after
// DisableThreshold consecutive failures. The round-robin pointer is already
// past the credential (Next advances it), so subsequent calls in the same
// pass try a different key.
func (p *Pool) ReportFailure(c *Credential, kind contracts.ErrorKind) {
	p.mu.Lock()
	defer p.mu.Unlock()

	c.failureCount++
	if kind == contracts.KindQuotaExhausted || c.failureCount >= DisableThreshold {
		c.disabledUntil = p.now().Add(DisableDuration)
	}
}

// Stats reports active and disabled credential counts for diagnostics.
func (p *Pool) Stats() (active, disabled int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := p.now()
	for _, c := range p.creds {
		if c.disabledUntil.After(now) {
			disabled++
		} else {
			active++
		}
	}
	return active, disabled
}

// Size returns the total credential count.
func (p *Pool) Size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.creds)
}
