package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/invopop/jsonschema"
	"github.com/rxtech-lab/argo-ta/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Config is the top-level configuration shared by the CLI and the HTTP server.
type Config struct {
	Log        LogConfig        `yaml:"log" json:"log" jsonschema:"title=Log,description=Logging settings"`
	Indicators IndicatorsConfig `yaml:"indicators" json:"indicators" jsonschema:"title=Indicators,description=Which indicators to compute and their parameters" validate:"-"`
	Cache      CacheConfig      `yaml:"cache" json:"cache" jsonschema:"title=Cache,description=Result memoization"`
	Server     ServerConfig     `yaml:"server" json:"server" jsonschema:"title=Server,description=HTTP API settings"`
	Chart      ChartConfig      `yaml:"chart" json:"chart" jsonschema:"title=Chart,description=Display defaults for the HTTP API. Never read by the engine"`
}

type LogConfig struct {
	Level string `yaml:"level" json:"level" jsonschema:"title=Level,enum=debug,enum=info,enum=warn,enum=error,default=info" validate:"required,oneof=debug info warn error"`
}

// IndicatorsConfig selects indicators and their parameters. It is also the
// body of API compute requests.
type IndicatorsConfig struct {
	MA        MAConfig        `yaml:"ma" json:"ma"`
	Bollinger BollingerConfig `yaml:"bollinger" json:"bollinger"`
	RSI       RSIConfig       `yaml:"rsi" json:"rsi"`
	MACD      MACDConfig      `yaml:"macd" json:"macd"`
	KD        KDConfig        `yaml:"kd" json:"kd"`
	TD        TDConfig        `yaml:"td" json:"td"`
}

// MAConfig lists the moving average windows. An empty list disables MA.
type MAConfig struct {
	Windows []int `yaml:"windows" json:"windows" jsonschema:"title=Windows,description=Moving average windows in bars" validate:"unique,dive,gt=0"`
}

type BollingerConfig struct {
	Enabled bool    `yaml:"enabled" json:"enabled"`
	Window  int     `yaml:"window" json:"window" jsonschema:"minimum=1,default=20" validate:"gt=0"`
	K       float64 `yaml:"k" json:"k" jsonschema:"title=K,description=Band width in standard deviations,default=2" validate:"gt=0"`
}

type RSIConfig struct {
	Enabled bool `yaml:"enabled" json:"enabled"`
	Window  int  `yaml:"window" json:"window" jsonschema:"minimum=1,default=14" validate:"gt=0"`
}

type MACDConfig struct {
	Enabled bool `yaml:"enabled" json:"enabled"`
	Fast    int  `yaml:"fast" json:"fast" jsonschema:"minimum=1,default=12" validate:"gt=0,ltfield=Slow"`
	Slow    int  `yaml:"slow" json:"slow" jsonschema:"minimum=1,default=26" validate:"gt=0"`
	Signal  int  `yaml:"signal" json:"signal" jsonschema:"minimum=1,default=9" validate:"gt=0"`
}

type KDConfig struct {
	Enabled   bool    `yaml:"enabled" json:"enabled"`
	Period    int     `yaml:"period" json:"period" jsonschema:"minimum=1,default=9" validate:"gt=0"`
	Com       float64 `yaml:"com" json:"com" jsonschema:"title=Center of mass,minimum=0,default=2" validate:"gte=0"`
	FlatRange string  `yaml:"flat_range" json:"flat_range" jsonschema:"title=Flat range policy,description=RSV when highest high equals lowest low,enum=midpoint,enum=carry,enum=nan,default=midpoint" validate:"omitempty,oneof=midpoint carry nan"`
}

type TDConfig struct {
	Enabled bool `yaml:"enabled" json:"enabled"`
}

type CacheConfig struct {
	TTL        time.Duration `yaml:"ttl" json:"ttl" jsonschema:"title=TTL,description=How long computed tables are reused" validate:"gte=0"`
	MaxEntries int           `yaml:"max_entries" json:"max_entries" jsonschema:"minimum=0,default=256" validate:"gte=0"`
}

type ServerConfig struct {
	Addr         string        `yaml:"addr" json:"addr" jsonschema:"default=:8080" validate:"required"`
	ReadTimeout  time.Duration `yaml:"read_timeout" json:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout" json:"write_timeout"`
	MaxBodyBytes int64         `yaml:"max_body_bytes" json:"max_body_bytes" jsonschema:"minimum=0,default=8388608,description=Largest accepted request body. Zero uses the default" validate:"gte=0"`
}

type ChartConfig struct {
	Period  string `yaml:"period" json:"period" jsonschema:"enum=1mo,enum=2mo,enum=3mo,enum=1y,enum=5y,default=1y" validate:"oneof=1mo 2mo 3mo 1y 5y"`
	ShowTD  bool   `yaml:"show_td" json:"show_td"`
	MALines []int  `yaml:"ma_lines" json:"ma_lines" validate:"dive,gt=0"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Log:        LogConfig{Level: "info"},
		Indicators: DefaultIndicators(),
		Cache: CacheConfig{
			TTL:        time.Hour,
			MaxEntries: 256,
		},
		Server: ServerConfig{
			Addr:         ":8080",
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 30 * time.Second,
			MaxBodyBytes: 8 << 20,
		},
		Chart: ChartConfig{
			Period:  "1y",
			ShowTD:  true,
			MALines: []int{5, 20},
		},
	}
}

// DefaultIndicators enables every indicator with its conventional parameters.
func DefaultIndicators() IndicatorsConfig {
	return IndicatorsConfig{
		MA:        MAConfig{Windows: []int{5, 10, 20, 60}},
		Bollinger: BollingerConfig{Enabled: true, Window: 20, K: 2},
		RSI:       RSIConfig{Enabled: true, Window: 14},
		MACD:      MACDConfig{Enabled: true, Fast: 12, Slow: 26, Signal: 9},
		KD:        KDConfig{Enabled: true, Period: 9, Com: 2, FlatRange: "midpoint"},
		TD:        TDConfig{Enabled: true},
	}
}

// Parse decodes YAML over the defaults and validates the result. Keys that
// are absent keep their default value.
func Parse(data []byte) (Config, error) {
	cfg := Default()

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to parse config", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Load reads and parses a YAML config file. An empty path yields Default().
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "failed to read config %s", path)
	}

	return Parse(data)
}

// Validate validates the whole configuration.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid config", err)
	}

	if err := c.Indicators.Validate(); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid config", err)
	}

	return nil
}

// Validate validates the indicator parameters alone, for API requests.
// Parameters of disabled indicators are ignored.
func (c *IndicatorsConfig) Validate() error {
	validate := validator.New()
	sections := []any{&c.MA}

	if c.Bollinger.Enabled {
		sections = append(sections, &c.Bollinger)
	}

	if c.RSI.Enabled {
		sections = append(sections, &c.RSI)
	}

	if c.MACD.Enabled {
		sections = append(sections, &c.MACD)
	}

	if c.KD.Enabled {
		sections = append(sections, &c.KD)
	}

	for _, section := range sections {
		if err := validate.Struct(section); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidParameter, "invalid indicator parameters", err)
		}
	}

	return nil
}

// JSONSchema returns the JSON schema of Config.
func JSONSchema() (string, error) {
	schema := jsonschema.Reflect(&Config{})

	jsonSchemaBytes, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return "", err
	}

	return string(jsonSchemaBytes), nil
}
