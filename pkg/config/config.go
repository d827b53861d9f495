/*
Copyright FreshBlocks. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package config loads the subsystem's configuration: where cards are
// stored, which business network they are scoped to, and the
// connection-profile template stamped onto newly imported cards.
package config

import (
	"encoding/json"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment variables overriding file
// settings, e.g. FRESHBLOCKS_STORE_PATH.
const EnvPrefix = "FRESHBLOCKS"

// Config is the root configuration document.
type Config struct {
	Store   StoreConfig   `mapstructure:"store"`
	Network NetworkConfig `mapstructure:"network"`
}

// StoreConfig configures the persistent card store.
type StoreConfig struct {
	// Path is the SQLite database file the card collection lives in.
	Path string `mapstructure:"path"`
}

// NetworkConfig configures the business network side.
type NetworkConfig struct {
	// Name is the business network newly imported cards are scoped to.
	Name string `mapstructure:"name"`
	// AdminCardName is the privileged card used for identity issuance.
	AdminCardName string `mapstructure:"admin-card-name"`
	// AdminCardArchive is the path of the card archive the administrative
	// card is bootstrapped from.
	AdminCardArchive string `mapstructure:"admin-card-archive"`
	// Profile is the connection-profile template document. It is treated
	// as opaque topology data and re-serialized for card import.
	Profile map[string]interface{} `mapstructure:"profile"`
}

// ProfileDocument returns the connection-profile template as a raw JSON
// document suitable for stamping onto cards.
func (n *NetworkConfig) ProfileDocument() (json.RawMessage, error) {
	if len(n.Profile) == 0 {
		return nil, errors.New("network profile is not configured")
	}
	document, err := json.Marshal(n.Profile)
	if err != nil {
		return nil, errors.Wrap(err, "marshal of network profile failed")
	}
	return document, nil
}

// Load reads configuration from the given file (any format viper
// understands) with environment variable overrides.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, errors.Wrapf(err, "read of config file %s failed", path)
	}
	return decode(v.AllSettings())
}

func decode(settings map[string]interface{}) (*Config, error) {
	cfg := &Config{}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           cfg,
		TagName:          "mapstructure",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, errors.Wrap(err, "config decoder creation failed")
	}
	if err := decoder.Decode(settings); err != nil {
		return nil, errors.Wrap(err, "config decode failed")
	}

	if cfg.Network.Name == "" {
		return nil, errors.New("network.name is required")
	}
	if len(cfg.Network.Profile) == 0 {
		return nil, errors.New("network.profile is required")
	}
	return cfg, nil
}
