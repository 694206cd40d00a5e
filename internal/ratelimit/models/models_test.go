package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestKeys(t *testing.T) {
	assert.Equal(t, "rl:user:42:read", NewUserRateLimitKey("42", ClassRead))
	assert.Equal(t, "rl:user:user_admin:write", NewUserRateLimitKey("user:admin", ClassWrite))
	assert.Equal(t, "rl:ip:__1:read", NewIPRateLimitKey("::1", ClassRead))
}

func TestRetryAfterSeconds(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, 1, RetryAfterSeconds(now, now))
	assert.Equal(t, 1, RetryAfterSeconds(now, now.Add(200*time.Millisecond)))
	assert.Equal(t, 30, RetryAfterSeconds(now, now.Add(30*time.Second)))
	assert.Equal(t, 31, RetryAfterSeconds(now, now.Add(30*time.Second+time.Millisecond)))
}

func TestEndpointClassIsValid(t *testing.T) {
	assert.True(t, ClassRead.IsValid())
	assert.True(t, ClassWrite.IsValid())
	assert.False(t, EndpointClass("auth").IsValid())
}
