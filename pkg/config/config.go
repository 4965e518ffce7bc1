package config

import (
	"encoding/json"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/max-bytes/influxdb-line-protocol/pkg/lineprotocol"
	"gopkg.in/yaml.v3"
)

// ReadConfigFromFile decodes configFile over cfg. The format follows the file extension:
// .toml, .yaml/.yml, anything else is read as JSON.
func ReadConfigFromFile(configFile string, cfg *Configuration) error {
	file, err := os.Open(configFile)
	if err != nil {
		return fmt.Errorf("can't open config file: %w", err)
	}
	defer file.Close()

	byteValue, err := ioutil.ReadAll(file)
	if err != nil {
		return fmt.Errorf("can't read config file: %w", err)
	}

	switch strings.ToLower(filepath.Ext(configFile)) {
	case ".toml":
		err = toml.Unmarshal(byteValue, cfg)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(byteValue, cfg)
	default:
		err = json.Unmarshal(byteValue, cfg)
	}
	if err != nil {
		return fmt.Errorf("can't parse config file: %w", err)
	}
	return cfg.Validate()
}

// Default returns the configuration used for keys a config file leaves out.
func Default() Configuration {
	return Configuration{
		Port:          80,
		LogLevel:      "info",
		MetricsPath:   "/metrics",
		ForwardPoints: false,
		Config: lineprotocol.Config{
			DefaultTypeMapping: lineprotocol.NumericFloat,
		},
		OutputsTimescale: []OutputTimescale{},
		OutputsInflux:    []OutputInflux{},
	}
}

type Configuration struct {
	Port          int    `json:"port" toml:"port" yaml:"port"`
	LogLevel      string `json:"log_level" toml:"log_level" yaml:"log_level"`
	MetricsPath   string `json:"metrics_path" toml:"metrics_path" yaml:"metrics_path"`
	ForwardPoints bool   `json:"forward_points" toml:"forward_points" yaml:"forward_points"`

	// codec options: addTimestamp, defaultTypeMapping, typeMappings
	lineprotocol.Config `yaml:",inline"`

	OutputsTimescale []OutputTimescale `json:"outputs_timescaledb" toml:"outputs_timescaledb" yaml:"outputs_timescaledb"`
	OutputsInflux    []OutputInflux    `json:"outputs_influxdb" toml:"outputs_influxdb" yaml:"outputs_influxdb"`
}

// Validate rejects numeric kinds other than int and float.
func (c *Configuration) Validate() error {
	if err := validateKind(c.DefaultTypeMapping); err != nil {
		return fmt.Errorf("defaultTypeMapping: %w", err)
	}
	for _, m := range c.TypeMappings {
		if m.FieldName == "" {
			return fmt.Errorf("typeMappings: fieldName must not be empty")
		}
		if err := validateKind(m.FieldType); err != nil {
			return fmt.Errorf("typeMappings[%s]: %w", m.FieldName, err)
		}
	}
	for _, o := range c.OutputsInflux {
		if o.Version != 1 && o.Version != 2 {
			return fmt.Errorf("outputs_influxdb: unknown influx version specified: %d", o.Version)
		}
	}
	return nil
}

func validateKind(k lineprotocol.NumericKind) error {
	switch k {
	case "", lineprotocol.NumericInt, lineprotocol.NumericFloat:
		return nil
	}
	return fmt.Errorf("unknown numeric type %q", k)
}

type Tagfilter interface {
	GetTagfilterInclude() map[string][]string
	GetTagfilterBlock() map[string][]string
}

type MeasurementConfig interface {
	GetAddedTags() map[string]string
	GetIgnore() bool
	GetIgnoreFiltering() bool
}

type OutputTimescale struct {
	TagfilterInclude map[string][]string             `json:"tagfilter_include" toml:"tagfilter_include" yaml:"tagfilter_include"`
	TagfilterBlock   map[string][]string             `json:"tagfilter_block" toml:"tagfilter_block" yaml:"tagfilter_block"`
	WriteStrategy    string                          `json:"write_strategy" toml:"write_strategy" yaml:"write_strategy"`
	Measurements     map[string]MeasurementTimescale `json:"measurements" toml:"measurements" yaml:"measurements"`
	Connection       string                          `json:"connection" toml:"connection" yaml:"connection"`
}

func (c *OutputTimescale) GetTagfilterInclude() map[string][]string {
	return c.TagfilterInclude
}
func (c *OutputTimescale) GetTagfilterBlock() map[string][]string {
	return c.TagfilterBlock
}

type OutputInflux struct {
	TagfilterInclude map[string][]string          `json:"tagfilter_include" toml:"tagfilter_include" yaml:"tagfilter_include"`
	TagfilterBlock   map[string][]string          `json:"tagfilter_block" toml:"tagfilter_block" yaml:"tagfilter_block"`
	WriteStrategy    string                       `json:"write_strategy" toml:"write_strategy" yaml:"write_strategy"`
	Measurements     map[string]MeasurementInflux `json:"measurements" toml:"measurements" yaml:"measurements"`
	Connection       string                       `json:"connection" toml:"connection" yaml:"connection"`
	DbName           string                       `json:"db_name" toml:"db_name" yaml:"db_name"`
	Version          int                          `json:"version" toml:"version" yaml:"version"`
	Org              string                       `json:"org" toml:"org" yaml:"org"`
	AuthToken        string                       `json:"auth_token" toml:"auth_token" yaml:"auth_token"`
	Username         string                       `json:"username" toml:"username" yaml:"username"`
	Password         string                       `json:"password" toml:"password" yaml:"password"`
}

func (c *OutputInflux) GetTagfilterInclude() map[string][]string {
	return c.TagfilterInclude
}
func (c *OutputInflux) GetTagfilterBlock() map[string][]string {
	return c.TagfilterBlock
}

type MeasurementTimescale struct {
	AddedTags       map[string]string `json:"added_tags" toml:"added_tags" yaml:"added_tags"`
	FieldsAsColumns []string          `json:"fields_as_columns" toml:"fields_as_columns" yaml:"fields_as_columns"`
	TagsAsColumns   []string          `json:"tags_as_columns" toml:"tags_as_columns" yaml:"tags_as_columns"`
	TargetTable     string            `json:"target_table" toml:"target_table" yaml:"target_table"`
	Ignore          bool              `json:"ignore" toml:"ignore" yaml:"ignore"`
	IgnoreFiltering bool              `json:"ignore_filtering" toml:"ignore_filtering" yaml:"ignore_filtering"`
}

func (m MeasurementTimescale) GetAddedTags() map[string]string { return m.AddedTags }
func (m MeasurementTimescale) GetIgnore() bool                 { return m.Ignore }
func (m MeasurementTimescale) GetIgnoreFiltering() bool        { return m.IgnoreFiltering }

type MeasurementInflux struct {
	AddedTags       map[string]string `json:"added_tags" toml:"added_tags" yaml:"added_tags"`
	Ignore          bool              `json:"ignore" toml:"ignore" yaml:"ignore"`
	IgnoreFiltering bool              `json:"ignore_filtering" toml:"ignore_filtering" yaml:"ignore_filtering"`
}

func (m MeasurementInflux) GetAddedTags() map[string]string { return m.AddedTags }
func (m MeasurementInflux) GetIgnore() bool                 { return m.Ignore }
func (m MeasurementInflux) GetIgnoreFiltering() bool        { return m.IgnoreFiltering }
