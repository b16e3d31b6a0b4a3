package cachecore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestClassify_Miss_NilValue(t *testing.T) {
	state := Classify[string](nil, TTLSettings{TTL: time.Minute, StaleTTL: 30 * time.Second}, time.Now())
	assert.Equal(t, Miss, state.Tier)
	assert.Nil(t, state.Value)
}

func TestClassify_Actual(t *testing.T) {
	now := time.Now()
	value := NewCachedValue("hi", now.Add(-10*time.Second))
	ttl := TTLSettings{TTL: time.Minute, StaleTTL: 30 * time.Second}

	state := Classify(&value, ttl, now)
	assert.Equal(t, Actual, state.Tier)
	assert.Equal(t, "hi", state.Value.Data)
}

func TestClassify_Stale(t *testing.T) {
	now := time.Now()
	value := NewCachedValue("hi", now.Add(-40*time.Second))
	ttl := TTLSettings{TTL: time.Minute, StaleTTL: 30 * time.Second}

	state := Classify(&value, ttl, now)
	assert.Equal(t, Stale, state.Tier)
}

func TestClassify_MissPastTTL(t *testing.T) {
	now := time.Now()
	value := NewCachedValue("hi", now.Add(-90*time.Second))
	ttl := TTLSettings{TTL: time.Minute, StaleTTL: 30 * time.Second}

	state := Classify(&value, ttl, now)
	assert.Equal(t, Miss, state.Tier)
	assert.Nil(t, state.Value)
}

func TestClassify_TieResolvesFreshness(t *testing.T) {
	now := time.Now()
	value := NewCachedValue("hi", now.Add(-30*time.Second))
	ttl := TTLSettings{TTL: time.Minute, StaleTTL: 30 * time.Second}

	state := Classify(&value, ttl, now)
	assert.Equal(t, Actual, state.Tier)
}

func TestTierString(t *testing.T) {
	assert.Equal(t, "actual", Actual.String())
	assert.Equal(t, "stale", Stale.String())
	assert.Equal(t, "miss", Miss.String())
}
