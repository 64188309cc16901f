package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testConfig struct {
	Network *testNetwork `yaml:"Network" toml:"Network"`
	Name    string       `yaml:"name" toml:"name" default:"sockserver"`
}

type testNetwork struct {
	Host      string  `yaml:"host" toml:"host" default:"localhost"`
	Port      uint16  `yaml:"port" toml:"port" default:"23"`
	Buffer    int     `yaml:"buffer" toml:"buffer" default:"1024"`
	Ratio     float64 `yaml:"ratio" toml:"ratio" default:"0.5"`
	Multicore *bool   `yaml:"multicore" toml:"multicore" default:"true"`
	Timeout   *int    `yaml:"timeout" toml:"timeout" default:"5"`
	Limit     *int    `yaml:"limit" toml:"limit"`
}

type requiredConfig struct {
	Level string `yaml:"level"`
}

func TestDefaultsWithoutFile(t *testing.T) {
	t.Setenv(EnvConfigPath, filepath.Join(t.TempDir(), "missing.yaml"))

	cfg := &testConfig{}
	_, err := New("ignored.yaml", "", cfg)
	require.NoError(t, err)

	assert.Equal(t, "sockserver", cfg.Name)
	require.NotNil(t, cfg.Network)
	assert.Equal(t, "localhost", cfg.Network.Host)
	assert.Equal(t, uint16(23), cfg.Network.Port)
	assert.Equal(t, 1024, cfg.Network.Buffer)
	assert.Equal(t, 0.5, cfg.Network.Ratio)
	assert.True(t, *cfg.Network.Multicore)
	require.NotNil(t, cfg.Network.Timeout)
	assert.Equal(t, 5, *cfg.Network.Timeout)
	assert.Nil(t, cfg.Network.Limit)
}

func TestExplicitZero(t *testing.T) {
	for name, data := range map[string]string{
		"server.yaml": "Network:\n  timeout: 0\n  limit: 0\n",
		"server.toml": "[Network]\ntimeout = 0\nlimit = 0\n",
	} {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(data), 0600))

			cfg := &testConfig{}
			_, err := New(name, dir, cfg)
			require.NoError(t, err)

			require.NotNil(t, cfg.Network.Timeout)
			assert.Zero(t, *cfg.Network.Timeout)
			require.NotNil(t, cfg.Network.Limit)
			assert.Zero(t, *cfg.Network.Limit)
			assert.Equal(t, 1024, cfg.Network.Buffer)
		})
	}
}

func TestYAML(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "server.yaml"), []byte("Network:\n  port: 2323\n  multicore: false\n"), 0600))

	cfg := &testConfig{}
	c, err := New("server.yaml", dir, cfg)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "server.yaml"), c.GetPath())
	assert.Equal(t, uint16(2323), cfg.Network.Port)
	assert.False(t, *cfg.Network.Multicore)
	assert.Equal(t, "localhost", cfg.Network.Host)
}

func TestTOML(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "server.toml"), []byte("name = \"lines\"\n[Network]\nhost = \"0.0.0.0\"\nbuffer = 64\n"), 0600))

	cfg := &testConfig{}
	_, err := New("server.toml", dir, cfg)
	require.NoError(t, err)

	assert.Equal(t, "lines", cfg.Name)
	assert.Equal(t, "0.0.0.0", cfg.Network.Host)
	assert.Equal(t, 64, cfg.Network.Buffer)
	assert.Equal(t, uint16(23), cfg.Network.Port)
}

func TestRequired(t *testing.T) {
	t.Setenv(EnvConfigPath, filepath.Join(t.TempDir(), "missing.yaml"))
	_, err := New("ignored.yaml", "", &requiredConfig{})
	assert.Error(t, err)
}

func TestSave(t *testing.T) {
	for _, name := range []string{"server.yaml", "server.toml"} {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			cfg := &testConfig{}
			c, err := New(name, dir, cfg)
			require.NoError(t, err)

			cfg.Network.Port = 4242
			c.Update(cfg)
			require.NoError(t, c.Save())

			loaded := &testConfig{}
			_, err = New(name, dir, loaded)
			require.NoError(t, err)
			assert.Equal(t, uint16(4242), loaded.Network.Port)
		})
	}
}

func TestObserver(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "server.yaml")
	require.NoError(t, os.WriteFile(path, []byte("name: first\n"), 0600))

	cfg := &testConfig{}
	c, err := New("server.yaml", dir, cfg)
	require.NoError(t, err)
	defer c.Close()

	changed := make(chan *testConfig, 1)
	require.NoError(t, c.AddObserver(func(data interface{}) {
		select {
		case changed <- data.(*testConfig):
		default:
		}
	}))

	require.NoError(t, os.WriteFile(path, []byte("name: second-version\n"), 0600))
	now := time.Now().Add(time.Second)
	require.NoError(t, os.Chtimes(path, now, now))

	select {
	case reloaded := <-changed:
		assert.Equal(t, "second-version", reloaded.Name)
		assert.NotSame(t, cfg, reloaded)
		assert.Equal(t, "first", cfg.Name, "loaded configuration is not modified by reloads")
		require.NotNil(t, reloaded.Network)
		assert.Equal(t, 5, *reloaded.Network.Timeout)
	case <-time.After(5 * time.Second):
		t.Fatal("config change was not observed")
	}
}
