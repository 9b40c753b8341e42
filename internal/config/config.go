package config

import (
	"os"
	"path"
	"time"

	"gopkg.in/yaml.v2"
)

type Config struct {
	Public  Public
	private Private
}

type Public struct {
	ListenAddr string   `yaml:"listen_addr"`
	Upstream   Upstream `yaml:"upstream"`

	JwtTTL           time.Duration `yaml:"jwt_ttl"`
	SessionTTL       time.Duration `yaml:"session_ttl"`       // single-shot pending sessions
	BatchTTL         time.Duration `yaml:"batch_ttl"`         // whole batches, pending included
	EvictionInterval time.Duration `yaml:"eviction_interval"` // background sweep period

	VariantCount       int `yaml:"variant_count"`        // single-shot fallback pool size
	BatchMaxCount      int `yaml:"batch_max_count"`      // upper bound on requested accounts per batch
	BatchExtraVariants int `yaml:"batch_extra_variants"` // failure headroom on top of the requested count

	AccountsFile string `yaml:"accounts_file"`

	LogLevel string `yaml:"log_level"`
	LogJSON  bool   `yaml:"log_json"`
}

// Upstream describes the external account service endpoint.
type Upstream struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

type Private struct {
	JwtKey    string      `yaml:"jwt_key"`
	DigestKey string      `yaml:"digest_key"`
	Clients   []BotClient `yaml:"clients"`
}

// BotClient is one chat-bot process allowed to exchange its secret for a token.
type BotClient struct {
	ID     string `yaml:"id"`
	Secret string `yaml:"secret"`
}

func New(public Public, private Private) *Config {
	return &Config{public, private}
}

func (s *Config) JwtKey() string {
	return s.private.JwtKey
}

func (s *Config) JwtTTL() time.Duration {
	return s.Public.JwtTTL
}

func (s *Config) DigestKey() string {
	return s.private.DigestKey
}

func (s *Config) Clients() []BotClient {
	return s.private.Clients
}

// AccountsPath resolves the credential file location. The ACCOUNTS_FILE
// environment variable wins over the config value; the fallback is a fixed
// relative name.
func (p *Public) AccountsPath() string {
	if env := os.Getenv("ACCOUNTS_FILE"); env != "" {
		return env
	}
	if p.AccountsFile != "" {
		return p.AccountsFile
	}
	return "accounts.txt"
}

func mustLoadPath(configPath string, output interface{}) {
	// check if file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		panic("config file does not exist: " + configPath)
	}
	configFile, err := os.ReadFile(configPath)
	if err != nil {
		panic("can't read config file")
	}

	err = yaml.Unmarshal(configFile, output)
	if err != nil {
		panic("can't unmarshal config file")
	}
}

func MustLoad(configFolder string) *Config {
	var public Public
	mustLoadPath(path.Join(configFolder, "public.yaml"), &public)

	var private Private
	mustLoadPath(path.Join(configFolder, "private.yaml"), &private)

	return New(public, private)
}
