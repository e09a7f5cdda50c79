package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/wolfeidau/bundlecfg/internal/config"
	"github.com/wolfeidau/bundlecfg/internal/entries"
	"github.com/wolfeidau/bundlecfg/internal/mode"
	"github.com/wolfeidau/bundlecfg/internal/resolver"
	"gopkg.in/yaml.v3"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func newProject(t *testing.T) string {
	t.Helper()
	root, err := filepath.Abs(t.TempDir())
	require.NoError(t, err)

	writeFile(t, filepath.Join(root, "web", "app", entries.MarkerName), `{"app": "./main.js"}`)
	writeFile(t, filepath.Join(root, "web", "app", "main.js"), `console.log("app", process.env.NODE_ENV);`)
	writeFile(t, filepath.Join(root, "web", "admin", entries.MarkerName), `{"admin": "./main.js"}`)
	writeFile(t, filepath.Join(root, "web", "admin", "main.js"), `console.log("admin");`)
	return root
}

func TestResolveCmd_json(t *testing.T) {
	root := newProject(t)
	var out bytes.Buffer

	cmd := &ResolveCmd{Format: "json"}
	err := cmd.Run(context.Background(), &Globals{
		Root:   root,
		Types:  []string{"--type=bogus", "production"},
		Stdout: &out,
	})
	require.NoError(t, err)

	var cfg resolver.Config
	require.NoError(t, json.Unmarshal(out.Bytes(), &cfg))
	require.Equal(t, mode.Production, cfg.Mode)
	require.Equal(t, entries.Map{
		"admin": filepath.Join(root, "web", "admin", "main.js"),
		"app":   filepath.Join(root, "web", "app", "main.js"),
	}, cfg.Entries)
	require.True(t, cfg.Optimization.Minify)
	require.NotNil(t, cfg.VersionFile)
	require.Nil(t, cfg.DevServer)
}

func TestResolveCmd_yaml(t *testing.T) {
	root := newProject(t)
	var out bytes.Buffer

	cmd := &ResolveCmd{Format: "yaml"}
	err := cmd.Run(context.Background(), &Globals{
		Root:   root,
		Types:  []string{"devserver"},
		Stdout: &out,
	})
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, yaml.Unmarshal(out.Bytes(), &doc))
	require.Equal(t, "devserver", doc["mode"])
	require.Contains(t, doc, "devServer")
	require.NotContains(t, doc, "versionFile")
}

func TestResolveCmd_modeRequired(t *testing.T) {
	root := newProject(t)

	tests := []struct {
		name  string
		types []string
	}{
		{name: "missing", types: nil},
		{name: "unrecognized", types: []string{"staging"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			err := (&ResolveCmd{Format: "json"}).Run(context.Background(), &Globals{
				Root:   root,
				Types:  tt.types,
				Stdout: &out,
			})
			require.ErrorIs(t, err, mode.ErrModeRequired)
			require.Empty(t, out.String())
		})
	}
}

func TestResolveCmd_duplicateEntry(t *testing.T) {
	root := newProject(t)
	writeFile(t, filepath.Join(root, "web", "other", entries.MarkerName), `{"app": "./main.js"}`)

	err := (&ResolveCmd{Format: "json"}).Run(context.Background(), &Globals{
		Root:   root,
		Types:  []string{"development"},
		Stdout: &bytes.Buffer{},
	})
	require.ErrorIs(t, err, entries.ErrDuplicateEntry)
}

func TestResolveCmd_invalidConfig(t *testing.T) {
	root := newProject(t)
	writeFile(t, filepath.Join(root, "bundlecfg.json"), `{"devServer": {"port": 70000}}`)

	err := (&ResolveCmd{Format: "json"}).Run(context.Background(), &Globals{
		Root:   root,
		Types:  []string{"development"},
		Stdout: &bytes.Buffer{},
	})
	require.ErrorIs(t, err, config.ErrInvalidConfig)
}

func TestEntriesCmd(t *testing.T) {
	root := newProject(t)
	var out bytes.Buffer

	err := (&EntriesCmd{}).Run(context.Background(), &Globals{Root: root, Stdout: &out})
	require.NoError(t, err)

	lines := bytes.Split(bytes.TrimSpace(out.Bytes()), []byte("\n"))
	require.Len(t, lines, 2)
	require.Contains(t, string(lines[0]), "admin")
	require.Contains(t, string(lines[0]), filepath.Join(root, "web", "admin", "main.js"))
	require.Contains(t, string(lines[1]), "app")
}

func TestRunCmd_production(t *testing.T) {
	root := newProject(t)

	err := (&RunCmd{}).Run(context.Background(), &Globals{
		Version:    "test",
		Root:       root,
		Types:      []string{"production"},
		SassBinary: "sass",
	})
	require.NoError(t, err)

	dist := filepath.Join(root, "public", "dist")
	require.FileExists(t, filepath.Join(dist, "app.js"))
	require.FileExists(t, filepath.Join(dist, "admin.js"))
	require.FileExists(t, filepath.Join(dist, "version.txt"))

	js, err := os.ReadFile(filepath.Join(dist, "app.js"))
	require.NoError(t, err)
	require.Contains(t, string(js), `"production"`)
}

func TestRunCmd_seededRelativeEntry(t *testing.T) {
	root, err := filepath.Abs(t.TempDir())
	require.NoError(t, err)

	writeFile(t, filepath.Join(root, "bundlecfg.json"), `{"entries": {"app": "src/app.js"}}`)
	writeFile(t, filepath.Join(root, "src", "app.js"), `console.log("seeded");`)

	err = (&RunCmd{}).Run(context.Background(), &Globals{
		Root:  root,
		Types: []string{"production"},
	})
	require.NoError(t, err)
	require.FileExists(t, filepath.Join(root, "public", "dist", "app.js"))

	var out bytes.Buffer
	err = (&EntriesCmd{}).Run(context.Background(), &Globals{Root: root, Stdout: &out})
	require.NoError(t, err)
	require.Contains(t, out.String(), filepath.Join(root, "src", "app.js"))
}

func TestRunCmd_modeRequired(t *testing.T) {
	err := (&RunCmd{}).Run(context.Background(), &Globals{Root: newProject(t)})
	require.ErrorIs(t, err, mode.ErrModeRequired)
}
