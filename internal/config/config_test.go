package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/signalsfoundry/map-navigator/core"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.MetricsAddr)
	assert.Equal(t, time.Second/60, cfg.TickInterval)
	assert.Equal(t, 4, cfg.LoaderWorkers)

	opts, err := cfg.Options()
	require.NoError(t, err)
	assert.Equal(t, core.NavigationTypeQuick, opts.NavigationType)
	assert.Equal(t, core.GeographicModeDynamic, opts.GeographicNavMode)
	assert.Equal(t, 0.9, opts.CameraInertia.Pan)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "navigator.json")
	body := `{
		"log_level": "debug",
		"metrics_addr": ":9191",
		"navigation": {
			"type": "flyover",
			"geographic_mode": "free",
			"inertia": {"pan": 0.8, "rotate": 0.9, "zoom": 0.85}
		}
	}`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, ":9191", cfg.MetricsAddr)

	opts, err := cfg.Options()
	require.NoError(t, err)
	assert.Equal(t, core.NavigationTypeFlyOver, opts.NavigationType)
	assert.Equal(t, core.GeographicModeFree, opts.GeographicNavMode)
	assert.Equal(t, 0.8, opts.CameraInertia.Pan)
	assert.Equal(t, 0.85, opts.CameraInertia.Zoom)
}

func TestEnvironmentOverridesDefaults(t *testing.T) {
	t.Setenv("NAV_METRICS_ADDR", ":7070")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ":7070", cfg.MetricsAddr)
}

func TestBadNavigationTypeRejected(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	cfg.Navigation.Type = "teleport"
	_, err = cfg.Options()
	assert.Error(t, err)
}

func TestBadInertiaRejected(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	cfg.Navigation.Inertia.Zoom = 1.5
	_, err = cfg.Options()
	assert.Error(t, err)
}

func TestMissingConfigFileFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	assert.Error(t, err)
}
