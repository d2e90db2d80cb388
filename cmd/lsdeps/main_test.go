package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acheong08/lsdeps/internal/lstree"
)

func writeGlobalPrefix(t *testing.T) (prefix, dir string) {
	t.Helper()
	prefix = t.TempDir()
	dir = globalDir(prefix)
	fooDir := filepath.Join(dir, "node_modules", "foo")
	require.NoError(t, os.MkdirAll(fooDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "package.json"), []byte("{not json"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(fooDir, "package.json"),
		[]byte(`{"name": "foo", "version": "1.0.0"}`), 0644))
	return prefix, dir
}

func baseCLI() *CLI {
	return &CLI{Depth: 1, Color: "never", Unicode: true}
}

func TestReportGlobalSuppressesRootErrorMarker(t *testing.T) {
	prefix, dir := writeGlobalPrefix(t)

	cli := baseCLI()
	cli.Prefix = prefix
	cli.Global = true
	cli.Parseable = true
	cli.Long = true

	res, err := report(cli)
	require.NotNil(t, res)

	var rootErr *lstree.RootParseError
	require.ErrorAs(t, err, &rootErr)

	lines := strings.Split(res.Output, "\n")
	require.NotEmpty(t, lines)
	assert.True(t, strings.HasPrefix(lines[0], dir))
	assert.NotContains(t, lines[0], ":ERROR")
}

func TestReportLocalKeepsRootErrorMarker(t *testing.T) {
	_, dir := writeGlobalPrefix(t)

	cli := baseCLI()
	cli.Prefix = dir
	cli.Parseable = true
	cli.Long = true

	res, err := report(cli)
	require.NotNil(t, res)

	var rootErr *lstree.RootParseError
	require.ErrorAs(t, err, &rootErr)

	lines := strings.Split(res.Output, "\n")
	require.NotEmpty(t, lines)
	assert.Contains(t, lines[0], ":ERROR")
}

func TestReportTree(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "package.json"),
		[]byte(`{"name": "demo", "version": "1.0.0", "dependencies": {"foo": "^1.0.0"}}`), 0644))
	fooDir := filepath.Join(dir, "node_modules", "foo")
	require.NoError(t, os.MkdirAll(fooDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(fooDir, "package.json"),
		[]byte(`{"name": "foo", "version": "1.0.0"}`), 0644))

	cli := baseCLI()
	cli.Prefix = dir

	res, err := report(cli)
	require.NoError(t, err)
	assert.Contains(t, res.Output, "demo@1.0.0")
	assert.Contains(t, res.Output, "foo@1.0.0")
}
