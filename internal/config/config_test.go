package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadHosts(t *testing.T) {
	path := writeConfig(t, `{
		"hosts": [
			{"name": "a", "url": "http://a:11434", "type": "ollama", "models": ["m1", "m2"]},
			{"name": "b", "url": "http://b:1234", "type": "lmstudio", "models": ["m3"]},
			{"name": "c", "url": "http://c:11434", "models": ["m4"]}
		]
	}`)

	hosts, err := LoadHosts(path)
	require.NoError(t, err)
	require.Len(t, hosts, 3)
	assert.Equal(t, HostTypeOllama, hosts[0].Type)
	assert.Equal(t, HostTypeOpenAI, hosts[1].Type, "lmstudio is an alias for the OpenAI-compatible type")
	assert.Equal(t, HostTypeOllama, hosts[2].Type, "type defaults to ollama")
}

func TestLoadHostsErrors(t *testing.T) {
	cases := map[string]string{
		"missing file": filepath.Join(t.TempDir(), "nope.json"),
		"invalid json": writeConfig(t, `{"hosts": [`),
		"no hosts":     writeConfig(t, `{"hosts": []}`),
		"unknown type": writeConfig(t, `{"hosts": [{"name": "x", "url": "http://x", "type": "triton", "models": ["m"]}]}`),
		"missing url":  writeConfig(t, `{"hosts": [{"name": "x", "type": "ollama", "models": ["m"]}]}`),
	}
	for name, path := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := LoadHosts(path)
			assert.Error(t, err)
		})
	}
}

func TestSplitModels(t *testing.T) {
	assert.Nil(t, SplitModels(""))
	assert.Equal(t, []string{"a", "b"}, SplitModels("a,b"))
	assert.Equal(t, []string{"a", "b"}, SplitModels(" a , ,b, "))
}

func testHosts() []Host {
	return []Host{
		{Name: "a", URL: "http://a", Type: HostTypeOllama, Models: []string{"m1", "m2"}},
		{Name: "b", URL: "http://b", Type: HostTypeOpenAI, Models: []string{"m2", "m3"}},
	}
}

func TestSelectedAllModels(t *testing.T) {
	cfg := Config{Hosts: testHosts()}
	refs, err := cfg.Selected()
	require.NoError(t, err)
	require.Len(t, refs, 3)
	assert.Equal(t, "m1", refs[0].Model)
	assert.Equal(t, "a", refs[0].Host.Name)
	// The first host claiming a model wins.
	assert.Equal(t, "m2", refs[1].Model)
	assert.Equal(t, "a", refs[1].Host.Name)
	assert.Equal(t, "m3", refs[2].Model)
	assert.Equal(t, "b", refs[2].Host.Name)
}

func TestSelectedWithFilter(t *testing.T) {
	cfg := Config{Hosts: testHosts(), Models: []string{"m3", "m1"}}
	refs, err := cfg.Selected()
	require.NoError(t, err)
	require.Len(t, refs, 2)
	// Filter order is preserved.
	assert.Equal(t, "m3", refs[0].Model)
	assert.Equal(t, "m1", refs[1].Model)
}

func TestSelectedUnservedModel(t *testing.T) {
	cfg := Config{Hosts: testHosts(), Models: []string{"m9"}}
	_, err := cfg.Selected()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "m9")
}

func TestSelectedNoModelsAnywhere(t *testing.T) {
	cfg := Config{Hosts: []Host{{Name: "empty", URL: "http://e", Type: HostTypeOllama}}}
	_, err := cfg.Selected()
	assert.Error(t, err)
}
