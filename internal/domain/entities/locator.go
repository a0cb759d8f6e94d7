package entities

import (
	"net/url"
	"strconv"
	"time"
)

// Locator is a time-limited address of the live media resource.
// A refresh replaces the Locator value; it is never mutated.
type Locator struct {
	URL       string    `json:"url"`
	FetchedAt time.Time `json:"fetched_at"`
	// ExpiresAt is the server-side expiry advertised by the address, zero if unknown
	ExpiresAt time.Time `json:"expires_at,omitempty"`
}

// NewLocator builds a locator fetched at the given time
func NewLocator(rawURL string, fetchedAt time.Time) Locator {
	loc := Locator{URL: rawURL, FetchedAt: fetchedAt}
	if exp, ok := ParseLocatorExpiry(rawURL); ok {
		loc.ExpiresAt = exp
	}
	return loc
}

// Age returns how long ago the locator was fetched
func (l Locator) Age(now time.Time) time.Duration {
	return now.Sub(l.FetchedAt)
}

// Usable reports whether the locator may still be handed out
func (l Locator) Usable(now time.Time, ttl time.Duration) bool {
	if l.URL == "" {
		return false
	}
	if l.Age(now) >= ttl {
		return false
	}
	if !l.ExpiresAt.IsZero() && !now.Before(l.ExpiresAt) {
		return false
	}
	return true
}

// ParseLocatorExpiry extracts the "te" (unix seconds) query parameter some
// CDNs attach to signed manifest URLs.
func ParseLocatorExpiry(rawURL string) (time.Time, bool) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return time.Time{}, false
	}
	te := u.Query().Get("te")
	if te == "" {
		return time.Time{}, false
	}
	secs, err := strconv.ParseInt(te, 10, 64)
	if err != nil || secs <= 0 {
		return time.Time{}, false
	}
	return time.Unix(secs, 0), true
}
