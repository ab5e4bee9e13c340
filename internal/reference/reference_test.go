package reference

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var urlSafe = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

func TestNew_LengthAndAlphabet(t *testing.T) {
	ref, err := New()
	require.NoError(t, err)
	assert.Len(t, ref, Length)
	assert.Regexp(t, urlSafe, ref)
}

func TestNew_Unique(t *testing.T) {
	seen := make(map[string]struct{}, 10000)
	for i := 0; i < 10000; i++ {
		ref, err := New()
		require.NoError(t, err)
		_, dup := seen[ref]
		require.False(t, dup, "duplicate reference %s after %d draws", ref, i)
		seen[ref] = struct{}{}
	}
}
