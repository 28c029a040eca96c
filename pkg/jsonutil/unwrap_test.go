package jsonutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUnwrap(t *testing.T) {
	t.Run("empty map yields nil", func(t *testing.T) {
		assert.Nil(t, Unwrap(map[string]any{}, "valueString"))
	})

	t.Run("preferred key wins", func(t *testing.T) {
		in := map[string]any{"valueString": "Guest", "confidence": 0.9}
		assert.Equal(t, "Guest", Unwrap(in, "valueString"))
	})

	t.Run("single entry unwrapped without preferred key", func(t *testing.T) {
		in := map[string]any{"valueNumber": 42.0}
		assert.Equal(t, 42.0, Unwrap(in, "valueString"))
	})

	t.Run("scalar passes through", func(t *testing.T) {
		assert.Equal(t, "plain", Unwrap("plain", "valueString"))
	})

	t.Run("multi entry without preferred key passes through", func(t *testing.T) {
		in := map[string]any{"a": 1, "b": 2}
		assert.Equal(t, in, Unwrap(in, "missing"))
	})
}

func TestUnwrapString(t *testing.T) {
	assert.Equal(t, "Guest", UnwrapString(map[string]any{"valueString": "Guest"}, "valueString"))
	assert.Equal(t, "42.5", UnwrapString(map[string]any{"valueNumber": 42.5}, ""))
	assert.Equal(t, "true", UnwrapString(true, ""))
	assert.Equal(t, "", UnwrapString(map[string]any{}, ""))
}

func TestUnwrapFloat(t *testing.T) {
	f, ok := UnwrapFloat(map[string]any{"valueNumber": 33.77}, "valueNumber")
	assert.True(t, ok)
	assert.Equal(t, 33.77, f)

	f, ok = UnwrapFloat("12.25", "")
	assert.True(t, ok)
	assert.Equal(t, 12.25, f)

	_, ok = UnwrapFloat("not a number", "")
	assert.False(t, ok)
}

func TestUnwrapBool(t *testing.T) {
	b, ok := UnwrapBool(map[string]any{"valueBoolean": true}, "valueBoolean")
	assert.True(t, ok)
	assert.True(t, b)

	b, ok = UnwrapBool("false", "")
	assert.True(t, ok)
	assert.False(t, b)

	_, ok = UnwrapBool(3.0, "")
	assert.False(t, ok)
}
