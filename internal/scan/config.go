package scan

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultRuntime is the scanner used when none is configured. Its output
	// is a table with SSID, BSSID and RSSI columns, one network per line.
	DefaultRuntime = "airport"

	defaultTimeout = 30 * time.Second
)

var defaultArgs = []string{"-s"}

type TimeDuration time.Duration

func NewTimeDuration(d time.Duration) TimeDuration {
	return TimeDuration(d)
}

func (d *TimeDuration) UnmarshalYAML(value *yaml.Node) error {
	duration, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("scan.TimeDuration: failed to parse: %s", err)
	}

	*d = TimeDuration(duration)
	return nil
}

func (d TimeDuration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

func (d *TimeDuration) UnmarshalJSON(bytes []byte) error {
	var v string
	if err := json.Unmarshal(bytes, &v); err != nil {
		return err
	}

	duration, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("scan.TimeDuration: failed to parse: %s", err)
	}

	*d = TimeDuration(duration)
	return nil
}

func (d TimeDuration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// Config is the external scanner configuration
type Config struct {
	Runtime string       `yaml:"runtime" json:"runtime"` // Scanner binary name or path
	Args    []string     `yaml:"args" json:"args"`       // Scanner arguments, output must go to stdout
	Timeout TimeDuration `yaml:"timeout" json:"timeout"` // Upper bound of a single scan (default: 30s)

	ParseErrorsThreshold uint8 `yaml:"parseErrorsThreshold" json:"parseErrorsThreshold"` // default: ParseErrorsThreshold
}

// NewConfig returns the default scanner configuration.
func NewConfig() *Config {
	return &Config{
		Runtime: DefaultRuntime,
		Args:    append([]string(nil), defaultArgs...),
		Timeout: NewTimeDuration(defaultTimeout),
	}
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.Runtime) == "" {
		return NewConfigError("scan.Config: runtime is required")
	}
	if c.Timeout < 0 {
		return NewConfigError(fmt.Sprintf("scan.Config: timeout must not be negative: %s", time.Duration(c.Timeout)))
	}
	return nil
}

func (c *Config) String() string {
	return strings.TrimSpace(fmt.Sprintf("%s %s", c.Runtime, strings.Join(c.Args, " ")))
}
