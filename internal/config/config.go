package config

import (
	"errors"
	"fmt"
	"net/netip"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const envPrefix = "CENSUS"

type Config struct {
	Port           string        `mapstructure:"port"`
	DBPath         string        `mapstructure:"db_path"`
	LogLevel       string        `mapstructure:"log_level"`
	LogFormat      string        `mapstructure:"log_format"`
	JWTSecret      string        `mapstructure:"jwt_secret"`
	TokenTTL       time.Duration `mapstructure:"token_ttl"`
	CookieSecure   bool          `mapstructure:"cookie_secure"`
	DebugErrors    bool          `mapstructure:"debug_errors"`
	AllowedOrigins []string      `mapstructure:"allowed_origins"`
	TrustedProxies []string      `mapstructure:"trusted_proxies"`
	Dev            bool          `mapstructure:"dev"`

	BackupEndpoint  string        `mapstructure:"backup_endpoint"`
	BackupBucket    string        `mapstructure:"backup_bucket"`
	BackupRegion    string        `mapstructure:"backup_region"`
	BackupAccessKey string        `mapstructure:"backup_access_key"`
	BackupSecretKey string        `mapstructure:"backup_secret_key"`
	BackupPrefix    string        `mapstructure:"backup_prefix"`
	BackupRetention time.Duration `mapstructure:"backup_retention"`
}

// devSecret signs tokens in dev mode when no secret is configured.
const devSecret = "census-dev-secret"

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("db_path", "census.db")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
	v.SetDefault("jwt_secret", "")
	v.SetDefault("token_ttl", 2*time.Hour)
	v.SetDefault("cookie_secure", false)
	v.SetDefault("debug_errors", false)
	v.SetDefault("allowed_origins", []string{})
	v.SetDefault("trusted_proxies", []string{})
	v.SetDefault("dev", false)
	v.SetDefault("backup_endpoint", "")
	v.SetDefault("backup_bucket", "")
	v.SetDefault("backup_region", "us-east-1")
	v.SetDefault("backup_access_key", "")
	v.SetDefault("backup_secret_key", "")
	v.SetDefault("backup_prefix", "census")
	v.SetDefault("backup_retention", 30*24*time.Hour)
}

// Load reads configuration from defaults, then the optional file, then
// CENSUS_* environment variables, then flags. Flags are bound by their
// names with dashes, e.g. --db-path binds db_path.
func Load(file string, flags *pflag.FlagSet) (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", file, err)
		}
	}

	if flags != nil {
		var bindErr error
		flags.VisitAll(func(f *pflag.Flag) {
			key := strings.ReplaceAll(f.Name, "-", "_")
			if !isKnown(key) {
				return
			}
			if err := v.BindPFlag(key, f); err != nil && bindErr == nil {
				bindErr = err
			}
		})
		if bindErr != nil {
			return Config{}, fmt.Errorf("bind flags: %w", bindErr)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if cfg.Dev && cfg.JWTSecret == "" {
		cfg.JWTSecret = devSecret
	}
	return cfg, nil
}

func isKnown(key string) bool {
	switch key {
	case "port", "db_path", "log_level", "log_format", "jwt_secret", "token_ttl",
		"cookie_secure", "debug_errors", "allowed_origins", "trusted_proxies", "dev",
		"backup_endpoint", "backup_bucket", "backup_region", "backup_access_key",
		"backup_secret_key", "backup_prefix", "backup_retention":
		return true
	}
	return false
}

// Validate rejects configurations the server cannot run with.
func (c Config) Validate() error {
	var errs []error
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("jwt secret is required (set CENSUS_JWT_SECRET)"))
	}
	if c.TokenTTL <= 0 {
		errs = append(errs, fmt.Errorf("token ttl must be positive, got %s", c.TokenTTL))
	}
	if c.Port == "" {
		errs = append(errs, errors.New("port is required"))
	}
	if c.DBPath == "" {
		errs = append(errs, errors.New("db path is required"))
	}
	for _, proxy := range c.TrustedProxies {
		if !validProxy(proxy) {
			errs = append(errs, fmt.Errorf("trusted proxy must be an IP or CIDR, got %q", proxy))
		}
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log format must be text or json, got %q", c.LogFormat))
	}
	return errors.Join(errs...)
}

func validProxy(s string) bool {
	s = strings.TrimSpace(s)
	if strings.Contains(s, "/") {
		_, err := netip.ParsePrefix(s)
		return err == nil
	}
	_, err := netip.ParseAddr(s)
	return err == nil
}

// Addr is the listen address.
func (c Config) Addr() string {
	return ":" + c.Port
}
