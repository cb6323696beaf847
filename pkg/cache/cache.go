// Package cache provides small TTL key/value stores for values that are
// expensive to recompute between command invocations, such as the installed
// plugin namespace map.
//
// Values are stored as JSON. A Get on an expired or missing key reports a miss
// rather than an error, so callers can follow a simple "recompute if stale"
// policy.
package cache

import (
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"lukechampine.com/blake3"
)

type (
	// Backend stores JSON-encodable values with a time to live.
	Backend interface {
		// Get decodes the value stored under key into v. It returns false when
		// the key is missing or expired.
		Get(key string, v any) (bool, error)

		// Set stores v under key until ttl elapses. A zero ttl never expires.
		Set(key string, v any, ttl time.Duration) error

		// Delete removes key. Missing keys are not an error.
		Delete(key string) error
	}

	// Option customizes a Backend.
	Option func(*clock)

	clock struct {
		now func() time.Time
	}

	// item is the stored envelope for a single value.
	item struct {
		Key       string          `json:"key"`
		ExpiresAt time.Time       `json:"expires_at,omitzero"`
		Value     json.RawMessage `json:"value"`
	}
)

// Key derives a stable cache key from the given parts using BLAKE3.
func Key(parts ...string) string {
	h := blake3.New(32, nil)
	for _, p := range parts {
		_, _ = h.Write([]byte(p))
		_, _ = h.Write([]byte{0})
	}

	return hex.EncodeToString(h.Sum(nil))
}

// WithClock overrides the time source used for expiry.
func WithClock(now func() time.Time) Option {
	return func(c *clock) { c.now = now }
}

func newClock(opts []Option) clock {
	c := clock{now: time.Now}
	for _, opt := range opts {
		opt(&c)
	}

	return c
}

func newItem(key string, v any, ttl time.Duration, now time.Time) (*item, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to encode cache value for %s", key)
	}

	it := &item{Key: key, Value: data}
	if ttl > 0 {
		it.ExpiresAt = now.Add(ttl)
	}

	return it, nil
}

func (i *item) expired(now time.Time) bool {
	return !i.ExpiresAt.IsZero() && !now.Before(i.ExpiresAt)
}

func (i *item) decode(v any) error {
	return errors.Wrapf(json.Unmarshal(i.Value, v), "failed to decode cache value for %s", i.Key)
}
