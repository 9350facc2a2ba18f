package context

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUserContext(t *testing.T) {
	ctx := context.Background()
	assert.Nil(t, GetUser(ctx))
	assert.Equal(t, AnonymousUserID, GetUserID(ctx))
	assert.False(t, HasRole(ctx, "analyst"))

	ctx = WithUser(ctx, &UserContext{UserID: "u-1", Roles: []string{"analyst"}})
	assert.Equal(t, "u-1", GetUserID(ctx))
	assert.True(t, HasRole(ctx, "analyst"))
	assert.False(t, HasRole(ctx, "admin"))
}

func TestTraceContext(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, GetRequestID(ctx))

	trace := NewTraceContext()
	ctx = WithTrace(ctx, trace)
	assert.Equal(t, trace.RequestID, GetRequestID(ctx))
	assert.Equal(t, trace.TraceID, GetTraceID(ctx))
	assert.Len(t, trace.SpanID, 16)
}
