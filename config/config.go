// Package config loads pre-shared key material from a YAML file for
// the teacrypt tool. Key and IV are agreed out of band; nothing here
// negotiates or verifies them.
package config

import (
	"encoding/hex"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/leifwalsh/tea/cipher"
)

type Config struct {
	Key string `json:"key" yaml:"key"` // 32 hex digits, 128-bit key
	IV  string `json:"iv" yaml:"iv"`   // 16 hex digits, 64-bit IV
}

// Parse decodes and validates a YAML config.
func Parse(data []byte) (*Config, error) {
	cfg := new(Config)
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if _, err := cfg.CipherKey(); err != nil {
		return nil, err
	}
	if _, err := cfg.CipherIV(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Load reads and parses the config file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// CipherKey decodes the hex key field.
func (c *Config) CipherKey() (cipher.Key, error) {
	raw, err := hex.DecodeString(c.Key)
	if err != nil {
		return cipher.Key{}, fmt.Errorf("key is not valid hex: %w", err)
	}
	return cipher.KeyFromBytes(raw)
}

// CipherIV decodes the hex iv field.
func (c *Config) CipherIV() (cipher.Block, error) {
	raw, err := hex.DecodeString(c.IV)
	if err != nil {
		return cipher.Block{}, fmt.Errorf("iv is not valid hex: %w", err)
	}
	return cipher.IVFromBytes(raw)
}
