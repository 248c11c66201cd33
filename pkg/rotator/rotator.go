package rotator

import (
	"errors"
	"fmt"
	"strings"
	"time"

	errs "ytmarket/pkg/errors"
	"ytmarket/pkg/logger"
	"ytmarket/pkg/youtube"
)

// ErrKeysExhausted is returned once every key in the pool has been tried and
// rotation has nowhere left to go. It is fatal for the current run.
var ErrKeysExhausted = errors.New("all API keys exhausted")

// Factory builds an API client for a single key. Injected in tests to point
// clients at a mock server.
type Factory func(key string) (*youtube.Client, error)

// DefaultFactory returns a Factory producing real API clients
func DefaultFactory(timeout time.Duration, log logger.Logger) Factory {
	return func(key string) (*youtube.Client, error) {
		return youtube.NewClient(key, timeout, log)
	}
}

// Rotator owns an ordered pool of API keys and a client handle for the
// active key. When a call fails with a quota-exhaustion rejection the
// rotator advances to the next key and replays the call; the active index
// only ever moves forward within a run.
type Rotator struct {
	keys    []string
	index   int
	client  *youtube.Client
	factory Factory
	logger  logger.Logger

	// OnRotate is invoked after each successful rotation, for progress
	// display and telemetry. May be nil.
	OnRotate func(fromIndex, toIndex int)
}

// New creates a rotator over the given keys. Blank and whitespace-only
// entries are dropped; remaining order is rotation order. A key whose client
// cannot be constructed is skipped exactly like a quota-dead key.
func New(keys []string, factory Factory, log logger.Logger) *Rotator {
	if log == nil {
		log = logger.GetLogger()
	}

	cleaned := make([]string, 0, len(keys))
	for _, k := range keys {
		if trimmed := strings.TrimSpace(k); trimmed != "" {
			cleaned = append(cleaned, trimmed)
		}
	}

	r := &Rotator{
		keys:    cleaned,
		factory: factory,
		logger:  log,
	}
	r.buildClient()
	return r
}

// Len returns the number of usable keys in the pool
func (r *Rotator) Len() int {
	return len(r.keys)
}

// ActiveIndex returns the zero-based index of the active key. An index equal
// to Len() means the pool is exhausted.
func (r *Rotator) ActiveIndex() int {
	return r.index
}

// Exhausted reports whether no usable key remains
func (r *Rotator) Exhausted() bool {
	return r.client == nil
}

// buildClient constructs the handle for the key at the current index,
// skipping forward past keys that fail construction.
func (r *Rotator) buildClient() {
	r.client = nil
	for r.index < len(r.keys) {
		client, err := r.factory(r.keys[r.index])
		if err == nil {
			r.client = client
			return
		}
		r.logger.WarnWithFields("skipping unusable API key", map[string]interface{}{
			"key_index": r.index,
			"error":     err.Error(),
		})
		r.index++
	}
}

// Rotate advances to the next key. It returns false once the pool is
// exhausted; exhaustion is terminal for the run.
func (r *Rotator) Rotate() bool {
	if r.index >= len(r.keys) {
		return false
	}

	from := r.index
	r.index++
	r.buildClient()

	if r.client == nil {
		r.logger.Warn("API key pool exhausted")
		return false
	}

	r.logger.InfoWithFields("rotated to next API key", map[string]interface{}{
		"from_index": from,
		"to_index":   r.index,
	})
	if r.OnRotate != nil {
		r.OnRotate(from, r.index)
	}
	return true
}

// Do executes call against the active client, transparently rotating and
// replaying on quota exhaustion. The call closure is re-invoked with the
// fresh client after every rotation, so any pagination cursor it uses must
// be read inside the closure rather than captured once.
//
// Quota rejections are fully absorbed unless the pool runs out; every other
// error propagates immediately.
func (r *Rotator) Do(call func(client *youtube.Client) error) error {
	var lastQuotaErr error

	for {
		if r.client == nil {
			if lastQuotaErr != nil {
				return fmt.Errorf("%w: last error: %w", ErrKeysExhausted, lastQuotaErr)
			}
			return ErrKeysExhausted
		}

		err := call(r.client)
		if err == nil {
			return nil
		}

		if !errs.IsQuotaExceeded(err) {
			return err
		}

		lastQuotaErr = err
		if !r.Rotate() {
			return fmt.Errorf("%w: last error: %w", ErrKeysExhausted, lastQuotaErr)
		}
	}
}
