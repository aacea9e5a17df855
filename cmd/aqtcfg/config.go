package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Config is the optional aqtcfg configuration file. Pointer fields separate
// "not set" from zero values; flags given on the command line always win.
type Config struct {
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
	Format    string `yaml:"format"`

	// fully-quantized preset defaults
	FwdBits               *int  `yaml:"fwd_bits"`
	BwdBits               *int  `yaml:"bwd_bits"`
	UseFwdQuant           *bool `yaml:"use_fwd_quant"`
	UseStochasticRounding *bool `yaml:"use_stochastic_rounding"`

	ServerAddress string `yaml:"server_address"`
}

func defaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "aqtcfg", "config.yaml")
}

// LoadConfig reads path. A missing file yields a zero Config; a malformed
// one is an error.
func LoadConfig(path string) (Config, error) {
	if path == "" {
		return Config{}, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Config{}, nil
	}
	if err != nil {
		return Config{}, errors.Wrap(err, "read config")
	}
	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, errors.Wrapf(err, "parse config %s", path)
	}
	return cfg, nil
}
