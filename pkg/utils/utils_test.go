package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrependDoesNotModify(t *testing.T) {
	original := []string{"b", "c"}
	prepended := Prepend("a", original)
	assert.Equal(t, []string{"a", "b", "c"}, prepended)
	assert.Equal(t, []string{"b", "c"}, original)
}

func TestStringPrefix(t *testing.T) {
	assert.Equal(t, "ab", StringPrefix("abc", 2))
	assert.Equal(t, "abc", StringPrefix("abc", 10))
}

func TestSetUpLogger(t *testing.T) {
	level := logrus.GetLevel()
	defer logrus.SetLevel(level)

	require.NoError(t, SetUpLogger("debug"))
	assert.Equal(t, logrus.DebugLevel, logrus.GetLevel())
	assert.Error(t, SetUpLogger("loud"))
}

type testConfig struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestParseYamlFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("name: scan\ncount: 3\n"), 0644))

	config, err := ParseYamlFromFile[testConfig](path)
	require.NoError(t, err)
	assert.Equal(t, &testConfig{Name: "scan", Count: 3}, config)

	unknown := filepath.Join(dir, "unknown.yaml")
	require.NoError(t, os.WriteFile(unknown, []byte("other: 1\n"), 0644))
	_, err = ParseYamlFromFile[testConfig](unknown)
	assert.Error(t, err)

	_, err = ParseYamlFromFile[testConfig](filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestMarshalIndentDoesNotEscapeHTML(t *testing.T) {
	bs, err := MarshalIndent(map[string]string{"a": "<b>"}, "", "  ")
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"a\": \"<b>\"\n}", string(bs))
}
