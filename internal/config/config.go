package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.uber.org/fx"
)

const envPrefix = "MEDIATION"

type Config struct {
	AppName     string `mapstructure:"app_name"`
	Environment string `mapstructure:"environment"`

	Log      LogConfig      `mapstructure:"log"`
	Tracing  TracingConfig  `mapstructure:"tracing"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	HTTP     HTTPConfig     `mapstructure:"http"`
	IPCG     IPCGConfig     `mapstructure:"ipcg"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

// TracingConfig enables OTLP span export. Spans are dropped when Endpoint is
// empty.
type TracingConfig struct {
	Endpoint    string  `mapstructure:"endpoint"`
	Protocol    string  `mapstructure:"protocol"`
	Insecure    bool    `mapstructure:"insecure"`
	SampleRatio float64 `mapstructure:"sample_ratio"`
}

type DatabaseConfig struct {
	// Driver is one of postgres, mysql or sqlite.
	Driver       string `mapstructure:"driver"`
	DSN          string `mapstructure:"dsn"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
	Tracing      bool   `mapstructure:"tracing"`
}

type RedisConfig struct {
	Addr        string        `mapstructure:"addr"`
	Password    string        `mapstructure:"password"`
	DB          int           `mapstructure:"db"`
	CallTypeTTL time.Duration `mapstructure:"calltype_ttl"`
}

type HTTPConfig struct {
	Addr string `mapstructure:"addr"`
}

// IPCGConfig drives the ER poller and the call detail creator.
type IPCGConfig struct {
	InboxDir     string `mapstructure:"inbox_dir"`
	ArchiveDir   string `mapstructure:"archive_dir"`
	FileSuffix   string `mapstructure:"file_suffix"`
	ErrorLogPath string `mapstructure:"error_log_path"`

	ERID       int    `mapstructure:"erid"`
	StartIndex int    `mapstructure:"start_index"`
	Delimiter  string `mapstructure:"delimiter"`
	Workers    int    `mapstructure:"workers"`

	LogAccountErrors bool `mapstructure:"log_account_errors"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app_name", "mediation")
	v.SetDefault("environment", "production")

	v.SetDefault("log.level", "info")

	v.SetDefault("tracing.endpoint", "")
	v.SetDefault("tracing.protocol", "grpc")
	v.SetDefault("tracing.insecure", false)
	v.SetDefault("tracing.sample_ratio", 1.0)

	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.dsn", "")
	v.SetDefault("database.max_open_conns", 20)
	v.SetDefault("database.tracing", false)

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.calltype_ttl", 10*time.Minute)

	v.SetDefault("http.addr", ":8080")

	v.SetDefault("ipcg.inbox_dir", "data/ipcg/inbox")
	v.SetDefault("ipcg.archive_dir", "data/ipcg/archive")
	v.SetDefault("ipcg.file_suffix", ".er")
	v.SetDefault("ipcg.error_log_path", "data/ipcg/ipcg-error.log")
	v.SetDefault("ipcg.erid", 501)
	v.SetDefault("ipcg.start_index", 3)
	v.SetDefault("ipcg.delimiter", ",")
	v.SetDefault("ipcg.workers", 4)
	v.SetDefault("ipcg.log_account_errors", true)
}

// Load reads defaults, an optional config file and MEDIATION_* environment
// variables, in increasing order of precedence. A .env file in the working
// directory is loaded into the environment first when present.
func Load(path string) (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

func provideConfig() (Config, error) {
	return Load(os.Getenv(envPrefix + "_CONFIG_FILE"))
}

var Module = fx.Module("config",
	fx.Provide(provideConfig),
)
