package cachecore

import (
	"time"

	"github.com/goccy/go-json"

	"github.com/dogpilecache/core/pkg/cacheerr"
)

// CachedValue is the in-memory envelope around a cached payload: the
// payload itself plus the instant it was created. CreatedAt is the
// creation instant, never the expiry — TTL math always happens on
// read against the current time.
type CachedValue[T any] struct {
	Data      T
	CreatedAt time.Time
}

// NewCachedValue wraps data with a creation instant.
func NewCachedValue[T any](data T, createdAt time.Time) CachedValue[T] {
	return CachedValue[T]{Data: data, CreatedAt: createdAt}
}

// wireEnvelope is the self-describing on-the-wire shape: a created
// timestamp, the opaque serialized payload, and the version tag the
// value was written under. Any mismatch between the stored version
// and the version a Cacheable reports now is a silent cache
// invalidation, not an error (see DecodeCachedValue).
type wireEnvelope struct {
	Created time.Time       `json:"created"`
	Data    json.RawMessage `json:"data"`
	Version uint32          `json:"version"`
}

// EncodeCachedValue serializes v for storage, tagging it with
// version. Failure to encode the payload is cacheerr.Serialize; the
// caller still returns the upstream value, only the cache write is
// skipped.
func EncodeCachedValue[T any](v CachedValue[T], version uint32) ([]byte, error) {
	payload, err := json.Marshal(v.Data)
	if err != nil {
		return nil, cacheerr.NewSerialize(err)
	}
	out, err := json.Marshal(wireEnvelope{
		Created: v.CreatedAt,
		Data:    payload,
		Version: version,
	})
	if err != nil {
		return nil, cacheerr.NewSerialize(err)
	}
	return out, nil
}

// versionMismatchError signals a well-formed envelope whose Version
// does not match the version requested on read. This is not surfaced
// as a cacheerr.CacheError: callers treat it as Miss via
// IsVersionMismatch below.
type versionMismatchError struct{}

func (versionMismatchError) Error() string { return "cache entry version mismatch" }

// DecodeCachedValue parses previously encoded bytes, rejecting the
// payload as a version mismatch (non-fatal, classified Miss by the
// caller) if its tagged version differs from wantVersion. A malformed
// envelope is cacheerr.Deserialize, which callers also degrade to
// Miss rather than failing the call.
func DecodeCachedValue[T any](data []byte, wantVersion uint32) (CachedValue[T], error) {
	var zero CachedValue[T]

	var env wireEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return zero, cacheerr.NewDeserialize(err)
	}
	if env.Version != wantVersion {
		return zero, versionMismatchError{}
	}

	var payload T
	if err := json.Unmarshal(env.Data, &payload); err != nil {
		return zero, cacheerr.NewDeserialize(err)
	}

	return CachedValue[T]{Data: payload, CreatedAt: env.Created}, nil
}

// IsVersionMismatch reports whether err is the sentinel
// DecodeCachedValue returns for a version tag that no longer matches.
func IsVersionMismatch(err error) bool {
	_, ok := err.(versionMismatchError)
	return ok
}
