package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Global{
		AreasPath:    "cno_areas.csv",
		RegistryPath: "cno.csv",
		Encoding:     "latin1",
		Delimiter:    ",",
		ListenAddr:   ":8501",
		CacheSize:    16,
		Watch:        true,
		LogLevel:     "info",
		LogFormat:    "console",
	}, *c)
	require.NoError(t, c.Validate())
}

func TestLoad_FileThenEnv(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	require.NoError(t, os.WriteFile(path, []byte("registry_path: dados/cno.csv\ncache_size: 4\nlisten_addr: \":9000\"\n"), 0o644))
	t.Setenv("CNODASH_LISTEN_ADDR", ":7000")

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "dados/cno.csv", c.RegistryPath)
	assert.Equal(t, 4, c.CacheSize)
	assert.Equal(t, ":7000", c.ListenAddr)
}

func TestLoad_MalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	require.NoError(t, os.WriteFile(path, []byte("cache_size: [\n"), 0o644))
	_, err := Load(path)
	assert.ErrorContains(t, err, "read config")
}

func TestSaveRoundTrip(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	c, err := Load("")
	require.NoError(t, err)
	c.Encoding = "utf-8"
	c.Watch = false
	require.NoError(t, Save(c, ""))

	_, err = os.Stat(filepath.Join(home, ".cnodash", "config.yaml"))
	require.NoError(t, err)

	again, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, c, again)
}

func TestValidate(t *testing.T) {
	base := func() *Global {
		return &Global{AreasPath: "a.csv", RegistryPath: "b.csv", Encoding: "latin1", Delimiter: ";", CacheSize: 1}
	}
	require.NoError(t, base().Validate())

	c := base()
	c.AreasPath = " "
	assert.ErrorContains(t, c.Validate(), "areas_path")

	c = base()
	c.Delimiter = ";;"
	assert.ErrorContains(t, c.Validate(), "single character")

	c = base()
	c.Encoding = "ebcdic"
	assert.ErrorContains(t, c.Validate(), "unsupported encoding")

	c = base()
	c.CacheSize = 0
	assert.ErrorContains(t, c.Validate(), "cache_size")
}

func TestReadOptions(t *testing.T) {
	c := &Global{Encoding: "latin1", Delimiter: "tab"}
	opt, err := c.ReadOptions()
	require.NoError(t, err)
	assert.Equal(t, '\t', opt.Delimiter)
	assert.Equal(t, "latin1", opt.Encoding)
}
