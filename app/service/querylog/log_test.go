package querylog

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLog_SequentialNumbers(t *testing.T) {
	fs := afero.NewMemMapFs()
	log := NewLog(fs, "data/query_error.txt")

	for i, query := range []string{"blorp", "flibber jabber", "zzz"} {
		n, err := log.Record(query)
		require.NoError(t, err)
		assert.Equal(t, i+1, n)
	}

	data, err := afero.ReadFile(fs, "data/query_error.txt")
	require.NoError(t, err)
	assert.Equal(t, "1. blorp\n2. flibber jabber\n3. zzz\n", string(data))
}

func TestLog_ContinuesExistingFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "q.txt", []byte("1. old\n2. older"), 0644))

	n, err := NewLog(fs, "q.txt").Record("new")
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestCountLines(t *testing.T) {
	assert.Equal(t, 0, countLines(""))
	assert.Equal(t, 1, countLines("a"))
	assert.Equal(t, 1, countLines("a\n"))
	assert.Equal(t, 2, countLines("a\nb"))
}
