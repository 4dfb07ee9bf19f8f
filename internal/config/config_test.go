package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rxtech-lab/argo-ta/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type ConfigTestSuite struct {
	suite.Suite
}

func TestConfigSuite(t *testing.T) {
	suite.Run(t, new(ConfigTestSuite))
}

func (suite *ConfigTestSuite) TestDefaultIsValid() {
	cfg := Default()
	suite.NoError(cfg.Validate())
	suite.Equal([]int{5, 10, 20, 60}, cfg.Indicators.MA.Windows)
	suite.Equal(time.Hour, cfg.Cache.TTL)
	suite.Equal("midpoint", cfg.Indicators.KD.FlatRange)
}

func (suite *ConfigTestSuite) TestParseKeepsDefaultsForMissingKeys() {
	cfg, err := Parse([]byte(`
log:
  level: debug
indicators:
  rsi:
    window: 6
  kd:
    flat_range: carry
cache:
  ttl: 10m
`))
	suite.Require().NoError(err)

	suite.Equal("debug", cfg.Log.Level)
	suite.Equal(6, cfg.Indicators.RSI.Window)
	suite.True(cfg.Indicators.RSI.Enabled)
	suite.Equal("carry", cfg.Indicators.KD.FlatRange)
	suite.Equal(9, cfg.Indicators.KD.Period)
	suite.Equal(10*time.Minute, cfg.Cache.TTL)
	suite.Equal(":8080", cfg.Server.Addr)
}

func (suite *ConfigTestSuite) TestParseDisablesIndicators() {
	cfg, err := Parse([]byte(`
indicators:
  ma:
    windows: []
  macd:
    enabled: false
  td:
    enabled: false
`))
	suite.Require().NoError(err)

	suite.Empty(cfg.Indicators.MA.Windows)
	suite.False(cfg.Indicators.MACD.Enabled)
	suite.False(cfg.Indicators.TD.Enabled)
	suite.True(cfg.Indicators.Bollinger.Enabled)
}

func (suite *ConfigTestSuite) TestParseRejectsInvalidValues() {
	testCases := []struct {
		name string
		yaml string
	}{
		{name: "bad log level", yaml: "log:\n  level: loud\n"},
		{name: "fast not below slow", yaml: "indicators:\n  macd:\n    fast: 30\n    slow: 26\n"},
		{name: "negative window", yaml: "indicators:\n  ma:\n    windows: [5, -1]\n"},
		{name: "duplicate window", yaml: "indicators:\n  ma:\n    windows: [5, 5]\n"},
		{name: "unknown flat range policy", yaml: "indicators:\n  kd:\n    flat_range: zero\n"},
		{name: "negative com", yaml: "indicators:\n  kd:\n    com: -1\n"},
		{name: "zero multiplier", yaml: "indicators:\n  bollinger:\n    k: 0\n"},
		{name: "unknown chart period", yaml: "chart:\n  period: 2w\n"},
	}

	for _, tc := range testCases {
		suite.Run(tc.name, func() {
			_, err := Parse([]byte(tc.yaml))
			suite.Error(err)
			suite.True(errors.HasCode(err, errors.ErrCodeInvalidConfiguration))
		})
	}
}

func (suite *ConfigTestSuite) TestParseRejectsMalformedYAML() {
	_, err := Parse([]byte("indicators: [unclosed"))
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidConfiguration))
}

func (suite *ConfigTestSuite) TestLoad() {
	cfg, err := Load("")
	suite.Require().NoError(err)
	suite.Equal(Default(), cfg)

	path := filepath.Join(suite.T().TempDir(), "config.yaml")
	suite.Require().NoError(os.WriteFile(path, []byte("server:\n  addr: 127.0.0.1:9000\n"), 0o600))

	cfg, err = Load(path)
	suite.Require().NoError(err)
	suite.Equal("127.0.0.1:9000", cfg.Server.Addr)

	_, err = Load(filepath.Join(suite.T().TempDir(), "missing.yaml"))
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidConfiguration))
}

func (suite *ConfigTestSuite) TestIndicatorsValidate() {
	indicators := DefaultIndicators()
	suite.NoError(indicators.Validate())

	indicators.RSI.Window = 0
	err := indicators.Validate()
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidParameter))

	// parameters of a disabled indicator are not checked
	indicators.RSI.Enabled = false
	suite.NoError(indicators.Validate())
	suite.NoError((&IndicatorsConfig{}).Validate())
}

func (suite *ConfigTestSuite) TestJSONSchema() {
	schema, err := JSONSchema()
	suite.Require().NoError(err)

	var result map[string]any
	suite.Require().NoError(json.Unmarshal([]byte(schema), &result))
	suite.Contains(result, "$schema")
	suite.Contains(result, "$defs")
	suite.Contains(schema, "flat_range")
}
