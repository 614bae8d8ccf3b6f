package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Data    DataConfig    `yaml:"data" mapstructure:"data"`
	Palette PaletteConfig `yaml:"palette" mapstructure:"palette"`
	Map     MapConfig     `yaml:"map" mapstructure:"map"`
	Server  ServerConfig  `yaml:"server" mapstructure:"server"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
}

// DataConfig locates the county workbook and the boundary overlay.
type DataConfig struct {
	Source           string        `yaml:"source" mapstructure:"source"`
	Sheet            string        `yaml:"sheet" mapstructure:"sheet"`
	Columns          ColumnsConfig `yaml:"columns" mapstructure:"columns"`
	BoundarySource   string        `yaml:"boundary_source" mapstructure:"boundary_source"`
	TempDir          string        `yaml:"temp_dir" mapstructure:"temp_dir"`
	FetchTimeoutSecs int           `yaml:"fetch_timeout_secs" mapstructure:"fetch_timeout_secs"`
	UserAgent        string        `yaml:"user_agent" mapstructure:"user_agent"`
}

// FetchTimeout returns the per-download timeout.
func (d DataConfig) FetchTimeout() time.Duration {
	return time.Duration(d.FetchTimeoutSecs) * time.Second
}

// ColumnsConfig names the header cells each record field is read from.
type ColumnsConfig struct {
	Longitude string `yaml:"longitude" mapstructure:"longitude"`
	Latitude  string `yaml:"latitude" mapstructure:"latitude"`
	County    string `yaml:"county" mapstructure:"county"`
	State     string `yaml:"state" mapstructure:"state"`
	Value     string `yaml:"value" mapstructure:"value"`
	Category  string `yaml:"category" mapstructure:"category"`
}

// DefaultColumns matches the master dataset workbook.
func DefaultColumns() ColumnsConfig {
	return ColumnsConfig{
		Longitude: "Longitude",
		Latitude:  "Latitude",
		County:    "COUNTY",
		State:     "State",
		Value:     "W/tCO2",
		Category:  `2024 DCI Score (2017-2021)   "N/A" = <500 residents`,
	}
}

// PaletteConfig optionally replaces the built-in colour tables.
type PaletteConfig struct {
	File string `yaml:"file" mapstructure:"file"`
}

// MapConfig is passed through to the browser map.
type MapConfig struct {
	Longitude   float64 `yaml:"longitude" mapstructure:"longitude" json:"longitude"`
	Latitude    float64 `yaml:"latitude" mapstructure:"latitude" json:"latitude"`
	Zoom        float64 `yaml:"zoom" mapstructure:"zoom" json:"zoom"`
	Pitch       float64 `yaml:"pitch" mapstructure:"pitch" json:"pitch"`
	Bearing     float64 `yaml:"bearing" mapstructure:"bearing" json:"bearing"`
	StyleURL    string  `yaml:"style_url" mapstructure:"style_url" json:"style_url"`
	AccessToken string  `yaml:"access_token" mapstructure:"access_token" json:"access_token,omitempty"`
}

// ServerConfig configures the HTTP server and view sessions.
type ServerConfig struct {
	Port               int      `yaml:"port" mapstructure:"port"`
	CORSOrigins        []string `yaml:"cors_origins" mapstructure:"cors_origins"`
	SessionTTLMins     int      `yaml:"session_ttl_mins" mapstructure:"session_ttl_mins"`
	SweepIntervalSecs  int      `yaml:"sweep_interval_secs" mapstructure:"sweep_interval_secs"`
	StatusIntervalSecs int      `yaml:"status_interval_secs" mapstructure:"status_interval_secs"`
	PointerRate        float64  `yaml:"pointer_rate" mapstructure:"pointer_rate"`
	PointerBurst       int      `yaml:"pointer_burst" mapstructure:"pointer_burst"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("CARBONMAP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("data.source", "data/master_dataset.xlsx")
	v.SetDefault("data.sheet", "Master Dataset (USE THIS!)")
	cols := DefaultColumns()
	v.SetDefault("data.columns.longitude", cols.Longitude)
	v.SetDefault("data.columns.latitude", cols.Latitude)
	v.SetDefault("data.columns.county", cols.County)
	v.SetDefault("data.columns.state", cols.State)
	v.SetDefault("data.columns.value", cols.Value)
	v.SetDefault("data.columns.category", cols.Category)
	v.SetDefault("data.boundary_source", "")
	v.SetDefault("data.temp_dir", "/tmp/carbon-map")
	v.SetDefault("data.fetch_timeout_secs", 120)
	v.SetDefault("data.user_agent", "carbon-map/1.0")
	v.SetDefault("palette.file", "")
	v.SetDefault("map.longitude", -95.7129)
	v.SetDefault("map.latitude", 37.0902)
	v.SetDefault("map.zoom", 3.5)
	v.SetDefault("map.pitch", 0)
	v.SetDefault("map.bearing", 0)
	v.SetDefault("map.style_url", "mapbox://styles/mapbox/light-v10")
	v.SetDefault("map.access_token", "")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("server.session_ttl_mins", 30)
	v.SetDefault("server.sweep_interval_secs", 60)
	v.SetDefault("server.status_interval_secs", 60)
	v.SetDefault("server.pointer_rate", 60)
	v.SetDefault("server.pointer_burst", 30)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks the settings a command mode needs. Mode "data" covers
// commands that only read the dataset; "serve" adds the server settings.
func (c *Config) Validate(mode string) error {
	var errs []string
	switch mode {
	case "serve":
		if c.Server.Port <= 0 || c.Server.Port > 65535 {
			errs = append(errs, "server.port must be between 1 and 65535")
		}
		if c.Server.PointerRate <= 0 || c.Server.PointerBurst <= 0 {
			errs = append(errs, "server.pointer_rate and server.pointer_burst must be > 0")
		}
		if c.Server.SessionTTLMins <= 0 {
			errs = append(errs, "server.session_ttl_mins must be > 0")
		}
		if c.Map.Zoom < 0 || c.Map.Zoom > 22 {
			errs = append(errs, "map.zoom must be between 0 and 22")
		}
		fallthrough
	case "data":
		if c.Data.Source == "" {
			errs = append(errs, "data.source is required")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(errs) > 0 {
		return eris.Errorf("config: %s", strings.Join(errs, "; "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
