package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoad_packagedDefault(t *testing.T) {
	cfg, err := Load(t.TempDir(), "")
	require.NoError(t, err)

	require.Empty(t, cfg.Source())
	require.Equal(t, "public", cfg.ContentBase)
	require.Equal(t, "dist", cfg.DistPath)
	require.Equal(t, "es2017", cfg.Target)
	require.Equal(t, "http://localhost", cfg.DevServer.Public)
	require.Equal(t, 8080, cfg.DevServer.Port)
	require.False(t, cfg.DevServer.HTTPS)
	require.Empty(t, cfg.Entries)
}

func TestLoad_projectFileFilledFromDefaults(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "bundlecfg.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"contentBase": "web",
		"devServer": {"public": "https://dev.example.com", "port": 9443},
		"entries": {"vendor": "/abs/vendor.js"}
	}`), 0o600))

	cfg, err := Load(root, "")
	require.NoError(t, err)

	require.Equal(t, path, cfg.Source())
	require.Equal(t, "web", cfg.ContentBase)
	require.Equal(t, "dist", cfg.DistPath)
	require.Equal(t, "https://dev.example.com", cfg.DevServer.Public)
	require.Equal(t, 9443, cfg.DevServer.Port)
	require.Equal(t, map[string]string{"vendor": "/abs/vendor.js"}, cfg.Entries)
}

func TestLoad_yamlFile(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "bundlecfg.yaml"), []byte(`
contentBase: site
distPath: js
exclude:
  - "**/node_modules"
`), 0o600))

	cfg, err := Load(root, "")
	require.NoError(t, err)
	require.Equal(t, "site", cfg.ContentBase)
	require.Equal(t, "js", cfg.DistPath)
	require.Equal(t, []string{"**/node_modules"}, cfg.Exclude)
}

func TestLoad_explicitPathWins(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "bundlecfg.json"), []byte(`{"contentBase": "local"}`), 0o600))

	explicit := filepath.Join(t.TempDir(), "other.json")
	require.NoError(t, os.WriteFile(explicit, []byte(`{"contentBase": "explicit"}`), 0o600))

	cfg, err := Load(root, explicit)
	require.NoError(t, err)
	require.Equal(t, "explicit", cfg.ContentBase)
}

func TestLoad_envOverrides(t *testing.T) {
	t.Setenv("BUNDLECFG_CONTENT_BASE", "from-env")
	t.Setenv("BUNDLECFG_DEVSERVER_PORT", "3000")
	t.Setenv("BUNDLECFG_DEVSERVER_HTTPS", "true")
	t.Setenv("BUNDLECFG_DEVSERVER_SSL_CERT", "certs/dev.crt")
	t.Setenv("BUNDLECFG_DEVSERVER_SSL_KEY", "certs/dev.key")

	cfg, err := Load(t.TempDir(), "")
	require.NoError(t, err)
	require.Equal(t, "from-env", cfg.ContentBase)
	require.Equal(t, 3000, cfg.DevServer.Port)
	require.True(t, cfg.DevServer.HTTPS)
	require.Equal(t, "certs/dev.crt", cfg.DevServer.SSL.Cert)
	require.Equal(t, "certs/dev.key", cfg.DevServer.SSL.Key)
}

func TestLoad_invalidEnvValue(t *testing.T) {
	t.Setenv("BUNDLECFG_DEVSERVER_PORT", "not-a-port")

	_, err := Load(t.TempDir(), "")
	require.ErrorIs(t, err, ErrInvalidConfig)
}

func TestLoad_malformedFile(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "bundlecfg.json"), []byte(`{"contentBase": [`), 0o600))

	_, err := Load(root, "")
	require.ErrorIs(t, err, ErrInvalidConfig)
}

func TestLoad_missingExplicitFile(t *testing.T) {
	_, err := Load(t.TempDir(), filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			ContentBase: "public",
			DistPath:    "dist",
			DevServer:   DevServer{Public: "http://localhost", Port: 8080},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{
			name:   "valid",
			mutate: func(c *Config) {},
		},
		{
			name:   "empty dist path is allowed",
			mutate: func(c *Config) { c.DistPath = "" },
		},
		{
			name:    "missing content base",
			mutate:  func(c *Config) { c.ContentBase = "" },
			wantErr: true,
		},
		{
			name:    "absolute dist path",
			mutate:  func(c *Config) { c.DistPath = "/dist" },
			wantErr: true,
		},
		{
			name:    "port out of range",
			mutate:  func(c *Config) { c.DevServer.Port = 70000 },
			wantErr: true,
		},
		{
			name:    "https without key",
			mutate:  func(c *Config) { c.DevServer.HTTPS = true; c.DevServer.SSL.Cert = "dev.crt" },
			wantErr: true,
		},
		{
			name: "https with material",
			mutate: func(c *Config) {
				c.DevServer.HTTPS = true
				c.DevServer.SSL = SSL{Cert: "dev.crt", Key: "dev.key"}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidConfig)
				return
			}
			require.NoError(t, err)
		})
	}
}
