package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// config is the merged view of flags, MOLCUT_* environment variables and
// the optional config file. Flags win over the environment, which wins
// over the file.
type config struct {
	Log struct {
		Level  string `mapstructure:"level"`
		Format string `mapstructure:"format"`
	} `mapstructure:"log"`
	Schema string `mapstructure:"schema"`
	Strict bool   `mapstructure:"strict"`
	Hex    bool   `mapstructure:"hex"`
	Framed bool   `mapstructure:"framed"`
}

// flagKeys maps config keys to the flags that can set them.
var flagKeys = map[string]string{
	"log.level":  "log-level",
	"log.format": "log-format",
	"schema":     "schema",
	"strict":     "strict",
	"hex":        "hex",
	"framed":     "framed",
}

func loadConfig(cmd *cobra.Command, path string) (*config, error) {
	v := viper.New()
	v.SetEnvPrefix("MOLCUT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	v.SetDefault("log.level", "warn")
	v.SetDefault("log.format", "console")

	for key, name := range flagKeys {
		if err := bindFlag(v, cmd.Flags(), key, name); err != nil {
			return nil, err
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

func bindFlag(v *viper.Viper, fs *pflag.FlagSet, key, name string) error {
	f := fs.Lookup(name)
	if f == nil {
		// Keys of flags a command does not define still need to be known to
		// viper for the environment to reach Unmarshal.
		return v.BindEnv(key)
	}
	return v.BindPFlag(key, f)
}

func newLogger(cfg *config) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Log.Level, err)
	}

	var zc zap.Config
	switch cfg.Log.Format {
	case "json":
		zc = zap.NewProductionConfig()
	case "console", "":
		zc = zap.NewDevelopmentConfig()
	default:
		return nil, fmt.Errorf("invalid log format %q (want console or json)", cfg.Log.Format)
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.OutputPaths = []string{"stderr"}
	zc.ErrorOutputPaths = []string{"stderr"}
	return zc.Build()
}
