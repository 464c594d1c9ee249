package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTraceIDContext(t *testing.T) {
	t.Run("stores the given trace id", func(t *testing.T) {
		ctx := WithTraceID(context.Background(), "trace-123")
		assert.Equal(t, "trace-123", GetTraceID(ctx))
	})

	t.Run("generates a uuid when empty", func(t *testing.T) {
		id := GetTraceID(WithTraceID(context.Background(), ""))
		assert.Len(t, id, 36)
	})

	t.Run("child context overrides without touching parent", func(t *testing.T) {
		parent := WithTraceID(context.Background(), "trace-1")
		child := WithTraceID(parent, "trace-2")
		assert.Equal(t, "trace-2", GetTraceID(child))
		assert.Equal(t, "trace-1", GetTraceID(parent))
	})

	t.Run("wrong value type reads as empty", func(t *testing.T) {
		ctx := context.WithValue(context.Background(), TraceIDKey, 12345)
		assert.Empty(t, GetTraceID(ctx))
	})
}

func TestNewTraceIDUnique(t *testing.T) {
	ids := make(map[string]struct{}, 100)
	for range 100 {
		ids[NewTraceID()] = struct{}{}
	}
	assert.Len(t, ids, 100)
}
