package cachecore

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Status is an on/off toggle for one of the three dispatch axes a
// CacheSettings value carries: cache, stale, lock.
type Status bool

// Enabled/Disabled spell out Status at call sites instead of bare
// true/false, matching the enum-flavored cache/stale/lock toggles a
// caller configures.
const (
	Disabled Status = false
	Enabled  Status = true
)

// CacheSettings flattens a caller's cache policy into the three
// orthogonal axes the Initial state dispatches on. Cache off bypasses
// the backend entirely; Stale and Lock only take effect when Cache is
// on.
type CacheSettings struct {
	Cache Status `yaml:"cache"`
	Stale Status `yaml:"stale"`
	Lock  Status `yaml:"lock"`

	// LockTTL bounds how long a dogpile lock is held before a waiter
	// gives up and proceeds to upstream unconditionally. Caller
	// -configurable; default 10s, matching expected upstream p99
	// latency.
	LockTTL time.Duration `yaml:"lock_ttl"`

	// KeyPrefix namespaces every key this settings value produces,
	// independent of any per-Cacheable prefix.
	KeyPrefix string `yaml:"key_prefix"`

	// DefaultTTL / DefaultStaleTTL record a configured default TTL
	// pair. Nothing in this package reads them: DefaultTTLs always
	// returns the DefaultTTL constant, and a walk takes its TTLs from
	// the Cacheable alone.
	DefaultTTL      time.Duration `yaml:"default_ttl"`
	DefaultStaleTTL time.Duration `yaml:"default_stale_ttl"`
}

// DefaultLockTTL is applied when CacheSettings.LockTTL is unset.
const DefaultLockTTL = 10 * time.Second

// DefaultCacheSettings returns the conventional defaults: cache on,
// stale off, lock off, 10s lock TTL, 60s default TTL.
func DefaultCacheSettings() CacheSettings {
	return CacheSettings{
		Cache:           Enabled,
		Stale:           Disabled,
		Lock:            Disabled,
		LockTTL:         DefaultLockTTL,
		DefaultTTL:      DefaultTTL,
		DefaultStaleTTL: defaultStaleTTL(DefaultTTL),
	}
}

// Option mutates a CacheSettings under construction. Use with
// NewCacheSettings to build a settings value the way a functional
// -options builder does.
type Option func(*CacheSettings)

// WithCache toggles whether the cache is consulted at all.
func WithCache(enabled bool) Option {
	return func(s *CacheSettings) { s.Cache = Status(enabled) }
}

// WithStale toggles stale-while-revalidate behavior.
func WithStale(enabled bool) Option {
	return func(s *CacheSettings) { s.Stale = Status(enabled) }
}

// WithLock toggles dogpile-prevention locking.
func WithLock(enabled bool) Option {
	return func(s *CacheSettings) { s.Lock = Status(enabled) }
}

// WithLockTTL overrides the default lock TTL.
func WithLockTTL(ttl time.Duration) Option {
	return func(s *CacheSettings) { s.LockTTL = ttl }
}

// WithKeyPrefix sets a namespace prefix applied to every key.
func WithKeyPrefix(prefix string) Option {
	return func(s *CacheSettings) { s.KeyPrefix = prefix }
}

// WithDefaultTTL sets DefaultTTL and derives DefaultStaleTTL from it.
// It does not change what DefaultTTLs returns.
func WithDefaultTTL(ttl time.Duration) Option {
	return func(s *CacheSettings) {
		s.DefaultTTL = ttl
		s.DefaultStaleTTL = defaultStaleTTL(ttl)
	}
}

// NewCacheSettings builds a CacheSettings starting from
// DefaultCacheSettings and applying opts in order.
func NewCacheSettings(opts ...Option) CacheSettings {
	s := DefaultCacheSettings()
	for _, opt := range opts {
		opt(&s)
	}
	if s.LockTTL <= 0 {
		s.LockTTL = DefaultLockTTL
	}
	return s
}

// LoadSettingsFromFile reads a YAML file into a CacheSettings,
// starting from DefaultCacheSettings so a file that only overrides a
// few fields still gets sane values for the rest. Environment
// variables in the form ${VAR_NAME} are expanded before parsing.
func LoadSettingsFromFile(path string) (CacheSettings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return CacheSettings{}, fmt.Errorf("read cache settings file: %w", err)
	}

	s := DefaultCacheSettings()
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &s); err != nil {
		return CacheSettings{}, fmt.Errorf("parse cache settings: %w", err)
	}
	if s.LockTTL <= 0 {
		s.LockTTL = DefaultLockTTL
	}
	return s, nil
}
