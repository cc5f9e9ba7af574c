package cqlmatch

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smhanov/cqlmatch/filter"
)

func TestNewConfiguredMatcher(t *testing.T) {
	saved := CurrentConfig()
	defer Configure(saved)

	path := filepath.Join(t.TempDir(), "attributes.yaml")
	require.NoError(t, os.WriteFile(path, []byte("title:\n  type: STRING\n"), 0o644))

	Configure(Config{
		RegistryFile: path,
		Capabilities: []string{"during", "negated-nodes"},
	})

	m, err := NewConfiguredMatcher(nil, nil)
	require.NoError(t, err)
	assert.Equal(t, filter.During|filter.NegatedNodes, m.Capabilities())

	Configure(Config{RegistryFile: filepath.Join(t.TempDir(), "missing.yaml")})
	_, err = NewConfiguredMatcher(nil, nil)
	require.Error(t, err)
}

func TestDefaultConfig(t *testing.T) {
	cfg := CurrentConfig()
	assert.Equal(t, []string{"default"}, cfg.Capabilities)
	assert.Equal(t, "info", cfg.LogLevel)
}
