package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Env          string       `mapstructure:"env"`
	Server       Server       `mapstructure:"server"`
	Database     Database     `mapstructure:"database"`
	JWT          JWT          `mapstructure:"jwt"`
	Registration Registration `mapstructure:"registration"`
	Admin        Admin        `mapstructure:"admin"`
}

type Server struct {
	Port         string        `mapstructure:"port"`
	GinMode      string        `mapstructure:"gin_mode"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

type Database struct {
	Driver   string `mapstructure:"driver"` // sqlite | postgres | mysql
	DSN      string `mapstructure:"dsn"`
	LogLevel string `mapstructure:"log_level"` // silent | error | warn | info
}

type JWT struct {
	Secret string        `mapstructure:"secret"`
	TTL    time.Duration `mapstructure:"ttl"`
}

// Registration controls who may be granted which role at sign-up.
type Registration struct {
	// AllowAdmin lets anonymous callers self-register as ADMIN. Off by default.
	AllowAdmin bool `mapstructure:"allow_admin"`
}

// Admin is the account created by the seed-admin command.
type Admin struct {
	Name     string `mapstructure:"name"`
	Username string `mapstructure:"username"`
	Email    string `mapstructure:"email"`
	Password string `mapstructure:"password"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "local")
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.gin_mode", "debug")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "food_rescue.db")
	v.SetDefault("database.log_level", "warn")
	v.SetDefault("jwt.secret", "food_rescue_dev_secret")
	v.SetDefault("jwt.ttl", "24h")
	v.SetDefault("registration.allow_admin", false)
	v.SetDefault("admin.name", "Administrator")
	v.SetDefault("admin.username", "admin")
	v.SetDefault("admin.email", "admin@foodrescue.local")
	v.SetDefault("admin.password", "")
}

// Load reads configuration from defaults, an optional YAML file at path and
// the environment. Every key can be overridden with FOODRESCUE_<SECTION>_<KEY>;
// the legacy JWT_SECRET, PORT and GIN_MODE variables are honoured too.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("FOODRESCUE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("jwt.secret", "FOODRESCUE_JWT_SECRET", "JWT_SECRET")
	_ = v.BindEnv("server.port", "FOODRESCUE_SERVER_PORT", "PORT")
	_ = v.BindEnv("server.gin_mode", "FOODRESCUE_SERVER_GIN_MODE", "GIN_MODE")

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("config: read %s: %w", path, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}
	cfg.Database.Driver = strings.ToLower(cfg.Database.Driver)
	return &cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "production" || c.Env == "prod"
}
