package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateLiveKey(t *testing.T) {
	key, err := GenerateLiveKey()
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(key, "sm_live_"))
	assert.Len(t, key, len("sm_live_")+64)
}

func TestGenerateTestKey(t *testing.T) {
	key, err := GenerateTestKey()
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(key, "sm_test_"))
}

func TestGeneratedKeysAreUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		key, err := GenerateLiveKey()
		require.NoError(t, err)
		assert.False(t, seen[key])
		seen[key] = true
	}
}
