package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
)

const (
	areasCSV    = "CNO,Estado,Área total\n1,SP,100\n2,RJ,600\n3,SP,20000\n4,PERNAMBUCO,100\n"
	registryCSV = "CNO,Situação,Destinação\n1,2,Residencial\n2,2,Comercial\n3,2,Residencial\n4,1,Galpão\n"
)

// resetFlags clears values and Changed state that cobra keeps across Execute calls.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func setContext(c *cobra.Command, ctx context.Context) {
	c.SetContext(ctx)
	for _, sub := range c.Commands() {
		setContext(sub, ctx)
	}
}

// runCmdContext executes the root command with args and returns its stdout.
func runCmdContext(t *testing.T, ctx context.Context, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	setContext(rootCmd, ctx)
	cfg = nil
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func runCmd(t *testing.T, args ...string) string {
	t.Helper()
	out, err := runCmdContext(t, context.Background(), args...)
	require.NoError(t, err, "command %v failed", args)
	return out
}

// sources writes latin1 inputs into a temp HOME and returns the source flags.
func sources(t *testing.T) []string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	areas := filepath.Join(home, "cno_areas.csv")
	registry := filepath.Join(home, "cno.csv")
	for path, content := range map[string]string{areas: areasCSV, registry: registryCSV} {
		b, err := charmap.ISO8859_1.NewEncoder().String(content)
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(path, []byte(b), 0o644))
	}
	return []string{"--areas", areas, "--registry", registry}
}

func TestCLI_SummaryPlain(t *testing.T) {
	args := append([]string{"summary", "--plain"}, sources(t)...)
	out := runCmd(t, args...)

	assert.Contains(t, out, "- **Total de CNOs**: 3")
	assert.Contains(t, out, "- **Estados Únicos**: 2")
	assert.Contains(t, out, "| Residencial | 2 | 66.67% |")
	assert.Contains(t, out, "| Comercial | 1 | 33.33% |")
	assert.NotContains(t, out, "Galpão")
	assert.NotContains(t, out, "PERNAMBUCO")
}

func TestCLI_ReportToStdoutAndFile(t *testing.T) {
	src := sources(t)
	out := runCmd(t, append([]string{"report"}, src...)...)
	assert.Contains(t, out, "<title>Dashboard CNO</title>")
	assert.Contains(t, out, "Quantidades por Destinação")

	dest := filepath.Join(t.TempDir(), "site", "index.html")
	out = runCmd(t, append([]string{"report", "-o", dest}, src...)...)
	assert.Contains(t, out, "✓ Wrote dashboard to "+dest)
	b, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Contains(t, string(b), "CNO por Estado")
}

func TestCLI_MissingSource(t *testing.T) {
	src := sources(t)
	_, err := runCmdContext(t, context.Background(), "summary", "--plain", "--areas", filepath.Join(t.TempDir(), "nope.csv"), src[2], src[3])
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load areas")
}

func TestCLI_InvalidOverride(t *testing.T) {
	src := sources(t)
	_, err := runCmdContext(t, context.Background(), append([]string{"summary", "--encoding", "ebcdic"}, src...)...)
	assert.ErrorContains(t, err, "unsupported encoding")
}

func TestCLI_ConfigSetAndShow(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	assert.Contains(t, runCmd(t, "config", "set", "cache_size", "4"), "Saved config")
	runCmd(t, "config", "set", "watch", "false")
	out := runCmd(t, "config", "show")
	assert.Contains(t, out, "cache_size: 4")
	assert.Contains(t, out, "watch: false")
	assert.Contains(t, out, "listen_addr: :8501")

	_, err := runCmdContext(t, context.Background(), "config", "set", "colour", "blue")
	assert.ErrorContains(t, err, "unknown key")
	_, err = runCmdContext(t, context.Background(), "config", "set", "cache_size", "0")
	assert.ErrorContains(t, err, "cache_size")
	_, err = runCmdContext(t, context.Background(), "config", "set", "log_format", "xml")
	assert.ErrorContains(t, err, "invalid log format")
}

func TestCLI_ConfigSetIgnoresFlagOverrides(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	runCmd(t, "--areas", "/tmp/other.csv", "config", "set", "listen_addr", ":9000")

	b, err := os.ReadFile(filepath.Join(home, ".cnodash", "config.yaml"))
	require.NoError(t, err)
	assert.Contains(t, string(b), "areas_path: cno_areas.csv")
	assert.Contains(t, string(b), ":9000")
}

func TestCLI_ServeStopsOnCancel(t *testing.T) {
	src := sources(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := runCmdContext(t, ctx, append([]string{"serve", "--addr", "127.0.0.1:0", "--watch"}, src...)...)
	assert.NoError(t, err)
}
