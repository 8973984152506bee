package trace

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestContextRoundTrip(t *testing.T) {
	ctx := WithContext(context.Background(), "abc")
	assert.Equal(t, "abc", FromContext(ctx))
	assert.Empty(t, FromContext(context.Background()))
}

func TestResolvePrefersTraceHeader(t *testing.T) {
	assert.Equal(t, "t1", Resolve("t1", "r1"))
	assert.Equal(t, "r1", Resolve("", "r1"))

	generated := Resolve("", "")
	_, err := uuid.Parse(generated)
	assert.NoError(t, err)
}
