package store

import (
	"fmt"
	"os"
	"strings"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

const (
	BackendLocal  = "local"
	BackendRemote = "remote"
)

// Config selects and configures a persistence backend.
type Config interface {
	Backend() string
	BasePath() string
	RedisAddr() string
	RedisPrefix() string
	User() string
	LogMode() string
}

// LoadConfig reads .questlog from QUESTLOG_CONFIG_PATH or the working
// directory, with QUESTLOG_* environment overrides. A missing file is fine.
func LoadConfig() (Config, error) {
	viper.SetDefault("backend", BackendLocal)
	viper.SetDefault("path", "~/.questlog.db")
	viper.SetDefault("redis.addr", "localhost:6379")
	viper.SetDefault("redis.prefix", "questlog")
	viper.SetDefault("user", "default")
	viper.SetDefault("log", "dev")
	viper.SetConfigName(".questlog") // .yaml is implicit
	viper.SetEnvPrefix("QUESTLOG")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if override := os.Getenv("QUESTLOG_CONFIG_PATH"); override != "" {
		viper.AddConfigPath(override)
	}

	viper.AddConfigPath("./")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("store: read config: %w", err)
		}
	}

	path, err := homedir.Expand(viper.GetString("path"))
	if err != nil {
		return nil, fmt.Errorf("store: expand path: %w", err)
	}

	backend := strings.ToLower(strings.TrimSpace(viper.GetString("backend")))
	if backend != BackendLocal && backend != BackendRemote {
		return nil, fmt.Errorf("store: unknown backend %q", backend)
	}

	return &fileConfig{
		Kind:   backend,
		Path:   path,
		Addr:   viper.GetString("redis.addr"),
		Prefix: viper.GetString("redis.prefix"),
		Owner:  viper.GetString("user"),
		Log:    viper.GetString("log"),
	}, nil
}

type fileConfig struct {
	Kind   string `json:"backend"`
	Path   string `json:"path"`
	Addr   string `json:"redisAddr"`
	Prefix string `json:"redisPrefix"`
	Owner  string `json:"user"`
	Log    string `json:"log"`
}

func (f *fileConfig) Backend() string     { return f.Kind }
func (f *fileConfig) BasePath() string    { return f.Path }
func (f *fileConfig) RedisAddr() string   { return f.Addr }
func (f *fileConfig) RedisPrefix() string { return f.Prefix }
func (f *fileConfig) User() string        { return f.Owner }
func (f *fileConfig) LogMode() string     { return f.Log }
