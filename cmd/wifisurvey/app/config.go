package app

import (
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roman-kulish/wifi-survey/internal/interp"
	"github.com/roman-kulish/wifi-survey/internal/scan"
)

const (
	storageDir   = "data"
	databaseName = "survey.sqlite"
)

// Config represents the main application configuration
type Config struct {
	Settings      Settings            `yaml:"settings"`
	Survey        SurveyConfig        `yaml:"survey"`
	Interpolation InterpolationConfig `yaml:"interpolation"`
	Scanner       *scan.Config        `yaml:"scanner"`
	Storage       StorageConfig       `yaml:"storage"`
}

// Settings represents global application settings
type Settings struct {
	LogLevel slog.Level `yaml:"logLevel"`
}

// SurveyConfig describes the surveyed area
type SurveyConfig struct {
	Name      string `yaml:"name"`      // Name given to new sessions
	FloorPlan string `yaml:"floorPlan"` // Floor plan image, recorded with new sessions
	Width     int    `yaml:"width"`     // Floor plan width in pixels, 0 to fit the samples
	Height    int    `yaml:"height"`    // Floor plan height in pixels, 0 to fit the samples
}

// InterpolationConfig represents field evaluation settings
type InterpolationConfig struct {
	Cols       int               `yaml:"cols"`
	Rows       int               `yaml:"rows"`
	Thresholds interp.Thresholds `yaml:"thresholds"`
}

// StorageConfig represents storage settings
type StorageConfig struct {
	DataDirectory string `yaml:"dataDirectory"`
	Database      string `yaml:"database"`
}

// NewConfig returns the configuration used for every setting the file omits.
func NewConfig() *Config {
	return &Config{
		Settings: Settings{LogLevel: slog.LevelInfo},
		Survey:   SurveyConfig{Name: "survey"},
		Interpolation: InterpolationConfig{
			Cols:       interp.DefaultResolution,
			Rows:       interp.DefaultResolution,
			Thresholds: append(interp.Thresholds(nil), interp.DefaultThresholds...),
		},
		Scanner: scan.NewConfig(),
		Storage: StorageConfig{
			DataDirectory: storageDir,
			Database:      databaseName,
		},
	}
}

// LoadConfig reads the YAML configuration file at path on top of the defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	config := NewConfig()
	if err = yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if config.Scanner == nil {
		config.Scanner = scan.NewConfig()
	}
	if config.Storage.DataDirectory == "" {
		config.Storage.DataDirectory = storageDir
	}
	if config.Storage.Database == "" {
		config.Storage.Database = databaseName
	}

	if err = config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func (c *Config) Validate() error {
	if c.Survey.Width < 0 || c.Survey.Height < 0 {
		return fmt.Errorf("survey: floor plan size must not be negative: %dx%d", c.Survey.Width, c.Survey.Height)
	}
	if c.Interpolation.Cols <= 0 || c.Interpolation.Rows <= 0 {
		return fmt.Errorf("interpolation: resolution must be positive: %dx%d", c.Interpolation.Cols, c.Interpolation.Rows)
	}
	if err := c.Interpolation.Thresholds.Validate(); err != nil {
		return fmt.Errorf("interpolation: %w", err)
	}
	if err := c.Scanner.Validate(); err != nil {
		return fmt.Errorf("scanner: %w", err)
	}
	return nil
}
