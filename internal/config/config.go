// Package config loads the ambient server configuration: listen address,
// server name/network metadata, registration timings, and operator
// accounts. The exact file format is outside spec.md's scope, but a core
// still needs something runnable to start from — grounded on
// horgh-catbox's Config struct (config.go) for the field set, ported from
// its summercat.com/config flat key=value map to gopkg.in/yaml.v2, which
// several repos in the pack already carry as a transitive config-loading
// dependency and which supports the nested Opers/limits structure more
// directly than a flat string map would.
package config

import (
	"os"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

// OperAccount is one configured operator entry. Password is expected to
// already be a bcrypt hash (see internal/oper.HashPassword); config
// loading never sees cleartext operator passwords.
type OperAccount struct {
	Name         string `yaml:"name"`
	PasswordHash string `yaml:"password_hash"`
	HostPattern  string `yaml:"host_pattern"`
}

// Config holds a server's full static configuration.
type Config struct {
	ListenHost string `yaml:"listen_host"`
	ListenPort string `yaml:"listen_port"`
	TLSCert    string `yaml:"tls_cert"`
	TLSKey     string `yaml:"tls_key"`

	ServerName string `yaml:"server_name"`
	ServerInfo string `yaml:"server_info"`
	Network    string `yaml:"network"`
	MOTD       string `yaml:"motd"`

	MaxNickLength int `yaml:"max_nick_length"`

	PingTime time.Duration `yaml:"ping_time"`
	DeadTime time.Duration `yaml:"dead_time"`

	RateLimit struct {
		CommandsPerMinute  int `yaml:"commands_per_minute"`
		MessagesPerMinute  int `yaml:"messages_per_minute"`
		ConnectionsPerHour int `yaml:"connections_per_hour"`
		CIDRv4             int `yaml:"cidr_v4"`
	} `yaml:"rate_limit"`

	Opers []OperAccount `yaml:"opers"`

	TS6SID string `yaml:"ts6_sid"`
}

// Default returns a Config with the same fallbacks horgh-catbox's
// checkAndParseConfig applies when a key is merely optional.
func Default() Config {
	c := Config{
		ListenHost:    "0.0.0.0",
		ListenPort:    "6667",
		ServerName:    "irc.example.net",
		MaxNickLength: 30,
		PingTime:      2 * time.Minute,
		DeadTime:      3 * time.Minute,
	}
	c.RateLimit.CommandsPerMinute = 60
	c.RateLimit.MessagesPerMinute = 30
	c.RateLimit.ConnectionsPerHour = 10
	c.RateLimit.CIDRv4 = 24
	return c
}

// Load reads and validates a YAML configuration file.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrap(err, "reading config file")
	}
	c := Default()
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Config{}, errors.Wrap(err, "parsing config file")
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate checks the required fields are present, matching the
// "requiredKeys" list in horgh-catbox's checkAndParseConfig.
func (c Config) Validate() error {
	if c.ServerName == "" {
		return errors.New("server_name is required")
	}
	if c.ListenPort == "" {
		return errors.New("listen_port is required")
	}
	if len(c.TS6SID) != 3 {
		return errors.New("ts6_sid must be exactly 3 characters")
	}
	if !isValidSID(c.TS6SID) {
		return errors.New("ts6_sid must match [0-9][A-Z0-9]{2}")
	}
	return nil
}

func isValidSID(sid string) bool {
	if sid[0] < '0' || sid[0] > '9' {
		return false
	}
	for i := 1; i < len(sid); i++ {
		ch := sid[i]
		isDigit := ch >= '0' && ch <= '9'
		isUpper := ch >= 'A' && ch <= 'Z'
		if !isDigit && !isUpper {
			return false
		}
	}
	return true
}
