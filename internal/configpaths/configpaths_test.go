package configpaths

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigCandidatePaths(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("APPDATA", t.TempDir())

	tests := []struct {
		name               string
		userCfg            string
		wantJSON, wantYAML string
		wantTOML           string
	}{
		{name: "yaml", userCfg: "/tmp/relay.yml", wantYAML: "/tmp/relay.yml"},
		{name: "toml", userCfg: "relay.TOML", wantTOML: "relay.TOML"},
		{name: "json", userCfg: "relay.json", wantJSON: "relay.json"},
		{name: "no extension", userCfg: "relayrc", wantJSON: "relayrc", wantYAML: "relayrc", wantTOML: "relayrc"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			j, y, to := ConfigCandidatePaths(tt.userCfg)
			for _, c := range []struct {
				paths []string
				want  string
			}{{j, tt.wantJSON}, {y, tt.wantYAML}, {to, tt.wantTOML}} {
				require.NotEmpty(t, c.paths)
				if c.want != "" {
					assert.Equal(t, c.want, c.paths[0])
				} else {
					assert.NotEqual(t, tt.userCfg, c.paths[0])
				}
			}
		})
	}
}

func TestDefaultCandidatesLiveInConfigDir(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	dir, err := DefaultConfigDir()
	require.NoError(t, err)
	assert.Equal(t, appDir, filepath.Base(dir))

	j, y, to := ConfigCandidatePaths("")
	assert.Contains(t, j, filepath.Join(dir, "config.json"))
	assert.Contains(t, y, filepath.Join(dir, "config.yaml"))
	assert.Contains(t, to, filepath.Join(dir, "config.toml"))
}
