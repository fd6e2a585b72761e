package lam

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vito/lam/pkg/ioctx"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestLoadProjectConfig(t *testing.T) {
	t.Run("missing keys keep their defaults", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), ProjectConfigFile)
		writeFile(t, path, "[runtime]\ntime_unit = \"s\"\n")

		config, err := LoadProjectConfig(path)
		require.NoError(t, err)
		assert.Equal(t, TimeUnitSeconds, config.Runtime.TimeUnit)
		assert.True(t, config.Runtime.RawInput)
		assert.Equal(t, "λ", config.Format.Lambda)
	})

	t.Run("every key", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), ProjectConfigFile)
		writeFile(t, path, `[runtime]
time_unit = "ms"
raw_input = false

[format]
lambda = "\\"
`)

		config, err := LoadProjectConfig(path)
		require.NoError(t, err)
		assert.Equal(t, TimeUnitMillis, config.Runtime.TimeUnit)
		assert.False(t, config.Runtime.RawInput)
		assert.Equal(t, `\`, config.Format.Lambda)
	})

	for _, tt := range []struct {
		name    string
		content string
		message string
	}{
		{"bad time unit", "[runtime]\ntime_unit = \"h\"\n", "runtime.time_unit"},
		{"bad lambda", "[format]\nlambda = \"L\"\n", "format.lambda"},
		{"unknown key", "[runtime]\nspeed = 3\n", "unknown key runtime.speed"},
		{"not toml", "[runtime\n", "parsing"},
	} {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), ProjectConfigFile)
			writeFile(t, path, tt.content)

			_, err := LoadProjectConfig(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

func TestFindProjectConfig(t *testing.T) {
	t.Run("walks up to the nearest lam.toml", func(t *testing.T) {
		root := t.TempDir()
		writeFile(t, filepath.Join(root, ProjectConfigFile), "[runtime]\ntime_unit = \"s\"\n")
		sub := filepath.Join(root, "a", "b")
		require.NoError(t, os.MkdirAll(sub, 0755))

		path, config, err := FindProjectConfig(sub)
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(root, ProjectConfigFile), path)
		assert.Equal(t, TimeUnitSeconds, config.Runtime.TimeUnit)
	})

	t.Run("stops at a .git boundary", func(t *testing.T) {
		root := t.TempDir()
		writeFile(t, filepath.Join(root, ProjectConfigFile), "")
		repo := filepath.Join(root, "repo")
		require.NoError(t, os.MkdirAll(filepath.Join(repo, ".git"), 0755))
		sub := filepath.Join(repo, "src")
		require.NoError(t, os.MkdirAll(sub, 0755))

		path, config, err := FindProjectConfig(sub)
		require.NoError(t, err)
		assert.Empty(t, path)
		assert.Nil(t, config)

		config, err = ConfigFor(sub)
		require.NoError(t, err)
		assert.Equal(t, DefaultProjectConfig(), config)
	})
}

func TestRunFileUsesProjectConfig(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, ".git"), 0755))
	writeFile(t, filepath.Join(dir, ProjectConfigFile), "[runtime]\ntime_unit = \"fortnights\"\n")
	writeFile(t, filepath.Join(dir, "main.lam"), "(λprint. print) 1\n")

	var stdout bytes.Buffer
	ctx := ioctx.StdoutToContext(context.Background(), &stdout)

	err := RunFile(ctx, filepath.Join(dir, "main.lam"), false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "loading project config")
	assert.Empty(t, stdout.String())
}
