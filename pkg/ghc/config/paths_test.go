package config

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConfigPath(t *testing.T) {
	t.Run("uses GHC_CONFIG env var when set", func(t *testing.T) {
		t.Setenv("GHC_CONFIG", "/custom/path/config.yaml")
		assert.Equal(t, "/custom/path/config.yaml", DefaultConfigPath())
	})

	t.Run("uses user config dir otherwise", func(t *testing.T) {
		t.Setenv("GHC_CONFIG", "")
		result := DefaultConfigPath()
		assert.True(t, strings.HasSuffix(result, filepath.Join("ghc", "config.yaml")),
			"Expected path to end with ghc/config.yaml, got: %s", result)
	})
}
