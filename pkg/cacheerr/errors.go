// Package cacheerr defines the error taxonomy used across the cache
// decision state machine. All failures, regardless of which failure
// domain produced them (upstream, cache backend, serialization), are
// surfaced through CacheError so callers have one type to switch on.
package cacheerr

import "fmt"

// Kind classifies a CacheError into one of the five failure domains
// the state machine distinguishes.
type Kind string

const (
	// KeyGeneration means Cacheable.CacheKey returned an error. Caller
	// bug; never retried, never cached.
	KeyGeneration Kind = "key_generation"
	// Backend means the cache store failed an I/O operation. Always
	// recovered locally by the state machine as a Miss (read) or a
	// dropped write.
	Backend Kind = "backend"
	// Deserialize means cache bytes existed but could not be decoded.
	// Recovered as a Miss. A version mismatch is not reported with this
	// kind; it is a silent Miss.
	Deserialize Kind = "deserialize"
	// Serialize means an upstream result could not be encoded for
	// storage. The call still returns the upstream value; the cache
	// is simply not updated.
	Serialize Kind = "serialize"
	// Upstream means the wrapped upstream call failed. Always fatal to
	// the caller; an upstream error is never cached.
	Upstream Kind = "upstream"
)

// CacheError is the single error type returned across the package
// boundary. Construct one with the New* helpers below rather than
// building the struct directly.
type CacheError struct {
	kind Kind
	msg  string
	err  error
}

// New wraps err under the given Kind with an explanatory message.
func New(kind Kind, msg string, err error) *CacheError {
	return &CacheError{kind: kind, msg: msg, err: err}
}

// NewKeyGeneration wraps a Cacheable.CacheKey failure.
func NewKeyGeneration(err error) *CacheError {
	return New(KeyGeneration, "cache key generation failed", err)
}

// NewBackend wraps a Backend I/O failure.
func NewBackend(op string, err error) *CacheError {
	return New(Backend, fmt.Sprintf("backend %s failed", op), err)
}

// NewDeserialize wraps a cache entry that could not be decoded.
func NewDeserialize(err error) *CacheError {
	return New(Deserialize, "cache entry could not be decoded", err)
}

// NewSerialize wraps an upstream result that could not be encoded.
func NewSerialize(err error) *CacheError {
	return New(Serialize, "upstream result could not be encoded", err)
}

// NewUpstream wraps an upstream call failure.
func NewUpstream(err error) *CacheError {
	return New(Upstream, "upstream call failed", err)
}

// Kind reports which failure domain produced this error.
func (e *CacheError) Kind() Kind {
	if e == nil {
		return ""
	}
	return e.kind
}

// Error implements the error interface.
func (e *CacheError) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %s: %v", e.kind, e.msg, e.err)
	}
	return fmt.Sprintf("%s: %s", e.kind, e.msg)
}

// Unwrap exposes the wrapped error for errors.Is / errors.As.
func (e *CacheError) Unwrap() error {
	return e.err
}

// Recoverable reports whether the state machine degrades this error
// into a Miss-equivalent transition instead of surfacing it to the
// caller. Only KeyGeneration and Upstream errors reach
// Finish{Err}; everything else is cache-side and recoverable.
func (e *CacheError) Recoverable() bool {
	switch e.kind {
	case Backend, Deserialize, Serialize:
		return true
	default:
		return false
	}
}

// IsKind reports whether err is a *CacheError of the given kind.
func IsKind(err error, kind Kind) bool {
	ce, ok := err.(*CacheError)
	return ok && ce.kind == kind
}
