// Package prefstore defines the typed, domain-scoped preference store
// contract. A preference is identified by a (domain, key) pair and holds
// exactly one of four kinds: boolean, integer, float, or text. Every
// mutation carries its own durability flush; a write that reports
// success is durably observable by other processes sharing the store.
package prefstore

import (
	"context"
	"errors"
)

// Kind identifies the persisted kind of a preference value.
type Kind int

const (
	KindBoolean Kind = iota + 1
	KindInteger
	KindFloat
	KindString
)

// String returns the kind name used in errors and logs.
func (k Kind) String() string {
	switch k {
	case KindBoolean:
		return "boolean"
	case KindInteger:
		return "integer"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	default:
		return "unknown"
	}
}

// ErrNotFound reports that no entry exists for the (domain, key) pair.
// Absence is a first-class result, distinct from every failure below.
var ErrNotFound = errors.New("preference not found")

// ErrKindMismatch reports that an entry exists but its stored kind
// differs from the kind the caller asked for. Values are never coerced.
var ErrKindMismatch = errors.New("preference kind mismatch")

// ErrFlushFailed reports that a mutation could not be confirmed flushed
// to durable storage. The in-memory write may have happened; callers
// must treat the operation as failed.
var ErrFlushFailed = errors.New("preference flush failed")

// ErrInvalidText reports that a text value cannot be represented in the
// store's native encoding (UTF-8).
var ErrInvalidText = errors.New("preference text is not valid UTF-8")

// ErrTextTooLarge reports that a stored text value exceeds the caller's
// byte budget. Text is never silently truncated.
var ErrTextTooLarge = errors.New("preference text exceeds byte budget")

// Store persists typed preferences scoped by domain. All calls are
// synchronous; writes and deletes block until the durability flush
// completes. Implementations provide no locking beyond the per-call
// flush: concurrent writers to the same (domain, key) observe a
// last-flush-wins outcome.
type Store interface {
	WriteBoolean(ctx context.Context, domain, key string, value bool) error
	WriteInteger(ctx context.Context, domain, key string, value int64) error
	WriteFloat(ctx context.Context, domain, key string, value float64) error
	WriteString(ctx context.Context, domain, key, value string) error

	ReadBoolean(ctx context.Context, domain, key string) (bool, error)
	ReadInteger(ctx context.Context, domain, key string) (int64, error)
	ReadFloat(ctx context.Context, domain, key string) (float64, error)
	// ReadString returns the stored text. maxBytes is the caller's byte
	// budget; stored text longer than maxBytes is ErrTextTooLarge.
	// maxBytes <= 0 disables the budget.
	ReadString(ctx context.Context, domain, key string, maxBytes int) (string, error)

	// Exists reports whether an entry of any kind is present.
	Exists(ctx context.Context, domain, key string) (bool, error)

	// Delete removes the entry and flushes. Deleting an absent key is
	// not an error.
	Delete(ctx context.Context, domain, key string) error

	Close() error
}
