package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/signalsfoundry/map-navigator/core"
	"github.com/signalsfoundry/map-navigator/internal/logging"
)

// InertiaConfig mirrors the per-gesture inertia tunables.
type InertiaConfig struct {
	Pan    float64 `mapstructure:"pan"`
	Rotate float64 `mapstructure:"rotate"`
	Zoom   float64 `mapstructure:"zoom"`
}

// SensitivityConfig mirrors the per-gesture sensitivity tunables.
type SensitivityConfig struct {
	Pan    float64 `mapstructure:"pan"`
	Rotate float64 `mapstructure:"rotate"`
	Zoom   float64 `mapstructure:"zoom"`
}

// NavigationConfig holds navigation tunables in file-friendly form.
type NavigationConfig struct {
	Type                 string            `mapstructure:"type"`            // instant, quick, flyover
	GeographicMode       string            `mapstructure:"geographic_mode"` // azimuthal, free, dynamic
	SamplesPerViewExtent float64           `mapstructure:"samples_per_view_extent"`
	LatitudeThreshold    float64           `mapstructure:"latitude_threshold"`
	ViewExtentMin        float64           `mapstructure:"view_extent_min"`
	ViewExtentMax        float64           `mapstructure:"view_extent_max"`
	Inertia              InertiaConfig     `mapstructure:"inertia"`
	Sensitivity          SensitivityConfig `mapstructure:"sensitivity"`
}

// Config is the navigator's runtime configuration, loadable from a file and
// overridable through NAV_* environment variables.
type Config struct {
	LogLevel      string           `mapstructure:"log_level"`
	LogFormat     string           `mapstructure:"log_format"`
	MetricsAddr   string           `mapstructure:"metrics_addr"`
	TickInterval  time.Duration    `mapstructure:"tick_interval"`
	MapConfigPath string           `mapstructure:"map_config"`
	LoaderWorkers int              `mapstructure:"loader_workers"`
	Navigation    NavigationConfig `mapstructure:"navigation"`
}

// Load reads the configuration. Defaults are applied first, then the file at
// path when non-empty, then NAV_* environment variables.
func Load(path string) (*Config, error) {
	v := viper.New()

	defaults := core.DefaultOptions()
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
	v.SetDefault("metrics_addr", ":9090")
	v.SetDefault("tick_interval", time.Second/60)
	v.SetDefault("map_config", "configs/map.json")
	v.SetDefault("loader_workers", 4)
	v.SetDefault("navigation.type", "quick")
	v.SetDefault("navigation.geographic_mode", "dynamic")
	v.SetDefault("navigation.samples_per_view_extent", defaults.NavigationSamplesPerViewExtent)
	v.SetDefault("navigation.latitude_threshold", defaults.NavigationLatitudeThreshold)
	v.SetDefault("navigation.view_extent_min", defaults.PositionViewExtentMin)
	v.SetDefault("navigation.view_extent_max", defaults.PositionViewExtentMax)
	v.SetDefault("navigation.inertia.pan", defaults.CameraInertia.Pan)
	v.SetDefault("navigation.inertia.rotate", defaults.CameraInertia.Rotate)
	v.SetDefault("navigation.inertia.zoom", defaults.CameraInertia.Zoom)
	v.SetDefault("navigation.sensitivity.pan", defaults.CameraSensitivity.Pan)
	v.SetDefault("navigation.sensitivity.rotate", defaults.CameraSensitivity.Rotate)
	v.SetDefault("navigation.sensitivity.zoom", defaults.CameraSensitivity.Zoom)

	v.SetEnvPrefix("NAV")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}

// Logging converts the configuration into logger settings.
func (c *Config) Logging() logging.Config {
	return logging.Config{
		Level:     c.LogLevel,
		Format:    c.LogFormat,
		AddSource: true,
	}
}

// Options converts the configuration into navigation tunables, validating
// the mode names and inertia ranges.
func (c *Config) Options() (core.Options, error) {
	opts := core.DefaultOptions()

	navType, err := parseNavigationType(c.Navigation.Type)
	if err != nil {
		return core.Options{}, err
	}
	geoMode, err := parseGeographicMode(c.Navigation.GeographicMode)
	if err != nil {
		return core.Options{}, err
	}

	opts.NavigationType = navType
	opts.GeographicNavMode = geoMode
	opts.NavigationSamplesPerViewExtent = c.Navigation.SamplesPerViewExtent
	opts.NavigationLatitudeThreshold = c.Navigation.LatitudeThreshold
	opts.PositionViewExtentMin = c.Navigation.ViewExtentMin
	opts.PositionViewExtentMax = c.Navigation.ViewExtentMax
	opts.CameraInertia = core.CameraInertia{
		Pan:    c.Navigation.Inertia.Pan,
		Rotate: c.Navigation.Inertia.Rotate,
		Zoom:   c.Navigation.Inertia.Zoom,
	}
	opts.CameraSensitivity = core.CameraSensitivity{
		Pan:    c.Navigation.Sensitivity.Pan,
		Rotate: c.Navigation.Sensitivity.Rotate,
		Zoom:   c.Navigation.Sensitivity.Zoom,
	}

	if err := opts.Validate(); err != nil {
		return core.Options{}, err
	}
	return opts, nil
}

func parseNavigationType(name string) (core.NavigationType, error) {
	switch strings.ToLower(name) {
	case "instant":
		return core.NavigationTypeInstant, nil
	case "quick", "":
		return core.NavigationTypeQuick, nil
	case "flyover", "fly-over":
		return core.NavigationTypeFlyOver, nil
	default:
		return 0, fmt.Errorf("unknown navigation type %q", name)
	}
}

func parseGeographicMode(name string) (core.GeographicMode, error) {
	switch strings.ToLower(name) {
	case "azimuthal":
		return core.GeographicModeAzimuthal, nil
	case "free":
		return core.GeographicModeFree, nil
	case "dynamic", "":
		return core.GeographicModeDynamic, nil
	default:
		return 0, fmt.Errorf("unknown geographic mode %q", name)
	}
}
