package cacheerr

import (
	"errors"
	"testing"
)

func TestCacheError_Recoverable(t *testing.T) {
	tests := []struct {
		name string
		err  *CacheError
		want bool
	}{
		{"key generation", NewKeyGeneration(errors.New("bad key")), false},
		{"backend", NewBackend("get", errors.New("conn refused")), true},
		{"deserialize", NewDeserialize(errors.New("bad json")), true},
		{"serialize", NewSerialize(errors.New("unsupported type")), true},
		{"upstream", NewUpstream(errors.New("timeout")), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Recoverable(); got != tt.want {
				t.Errorf("Recoverable() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCacheError_Kind(t *testing.T) {
	err := NewBackend("set", errors.New("disk full"))
	if err.Kind() != Backend {
		t.Errorf("Kind() = %v, want %v", err.Kind(), Backend)
	}
}

func TestCacheError_KindOnNil(t *testing.T) {
	var err *CacheError
	if err.Kind() != "" {
		t.Errorf("Kind() on nil = %v, want empty", err.Kind())
	}
}

func TestCacheError_Error(t *testing.T) {
	wrapped := errors.New("connection reset")
	err := NewBackend("get", wrapped)
	msg := err.Error()

	if msg == "" {
		t.Fatal("error message should not be empty")
	}
	for _, want := range []string{"backend", "get", "connection reset"} {
		if !contains(msg, want) {
			t.Errorf("error message %q should contain %q", msg, want)
		}
	}
}

func TestCacheError_ErrorNoWrapped(t *testing.T) {
	err := NewKeyGeneration(nil)
	if !contains(err.Error(), "key generation") {
		t.Errorf("error message %q should describe key generation", err.Error())
	}
}

func TestCacheError_Unwrap(t *testing.T) {
	wrapped := errors.New("root cause")
	err := NewUpstream(wrapped)

	if !errors.Is(err, wrapped) {
		t.Error("errors.Is should see through Unwrap to the wrapped error")
	}
}

func TestIsKind(t *testing.T) {
	err := NewDeserialize(errors.New("truncated"))

	if !IsKind(err, Deserialize) {
		t.Error("IsKind should report true for matching kind")
	}
	if IsKind(err, Backend) {
		t.Error("IsKind should report false for non-matching kind")
	}
	if IsKind(errors.New("plain error"), Backend) {
		t.Error("IsKind should report false for a non-CacheError")
	}
}

func contains(s, substr string) bool {
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			return true
		}
	}
	return false
}
