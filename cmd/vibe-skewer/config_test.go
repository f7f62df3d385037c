package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigSetAndGet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	var out bytes.Buffer
	require.NoError(t, runConfigSet(&out, path, "skewer.base_radius", "8"))
	assert.Contains(t, out.String(), "Set skewer.base_radius = 8")
	require.NoError(t, runConfigSet(&out, path, "indent", "yes"))

	v := newTestViper(t)
	require.NoError(t, initConfig(v, path))

	out.Reset()
	require.NoError(t, runConfigGet(&out, v, "indent"))
	assert.Equal(t, "true\n", out.String())

	s, err := loadSettings(v)
	require.NoError(t, err)
	assert.Equal(t, 8.0, s.Skewer.BaseRadius)
	assert.True(t, s.Indent)

	// Defaults are not written to the file.
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "stem1")
}

func TestConfigGetMissing(t *testing.T) {
	var out bytes.Buffer
	err := runConfigGet(&out, viper.New(), "nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"nope"`)
}

func TestConfigShow(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, runConfigShow(&out, viper.New()))
	assert.Contains(t, out.String(), "No configuration set")

	out.Reset()
	v := viper.New()
	v.Set("width", 640)
	require.NoError(t, runConfigShow(&out, v))
	assert.Contains(t, out.String(), "width: 640")
}

func TestInitConfigExplicitMissing(t *testing.T) {
	err := initConfig(viper.New(), filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
