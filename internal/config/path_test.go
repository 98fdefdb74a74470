package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	t.Run("tilde prefix", func(t *testing.T) {
		got := ExpandPath("~/data/budgeteer.db")
		assert.Equal(t, filepath.Join(home, "data", "budgeteer.db"), got)
	})

	t.Run("bare tilde", func(t *testing.T) {
		assert.Equal(t, home, ExpandPath("~"))
	})

	t.Run("environment variable", func(t *testing.T) {
		t.Setenv("BUDGETEER_TEST_DIR", "/var/data")
		assert.Equal(t, "/var/data/budgeteer.db", ExpandPath("$BUDGETEER_TEST_DIR/budgeteer.db"))
	})

	t.Run("plain path untouched", func(t *testing.T) {
		assert.Equal(t, "/tmp/test.db", ExpandPath("/tmp/test.db"))
	})

	t.Run("empty", func(t *testing.T) {
		assert.Equal(t, "", ExpandPath(""))
	})
}
