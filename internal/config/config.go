// Package config loads covdash settings from defaults, an optional YAML file,
// the environment and command line overrides, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/afero"

	"github.com/chmouel/covdash/internal/parser"
)

// EnvPrefix is the prefix of every environment variable read by covdash.
const EnvPrefix = "COVDASH_"

// Config is the full covdash configuration.
type Config struct {
	PathPrefix string       `koanf:"path_prefix"`
	SrcRoot    string       `koanf:"src_root" validate:"required"`
	HTTP       HTTPConfig   `koanf:"http"`
	Badge      BadgeConfig  `koanf:"badge"`
	Output     OutputConfig `koanf:"output"`
}

// HTTPConfig controls how remote reports are fetched.
type HTTPConfig struct {
	Timeout time.Duration `koanf:"timeout" validate:"gt=0"`
	Retries int           `koanf:"retries" validate:"gte=0,lte=10"`
}

// BadgeConfig holds the color thresholds of the SVG badge.
type BadgeConfig struct {
	Red    float64 `koanf:"red" validate:"gte=0,lte=100"`
	Yellow float64 `koanf:"yellow" validate:"gte=0,lte=100,gtefield=Red"`
}

// OutputConfig selects how tables are rendered.
type OutputConfig struct {
	Format string `koanf:"format" validate:"oneof=table json yaml"`
	Sort   string `koanf:"sort" validate:"oneof=path coverage -coverage"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		PathPrefix: parser.DefaultPathPrefix,
		SrcRoot:    ".",
		HTTP: HTTPConfig{
			Timeout: 30 * time.Second,
			Retries: 2,
		},
		Badge: BadgeConfig{
			Red:    40,
			Yellow: 70,
		},
		Output: OutputConfig{
			Format: "table",
			Sort:   string(parser.SortByPath),
		},
	}
}

// envToPath maps environment variables to configuration keys.
var envToPath = map[string]string{
	EnvPrefix + "PATH_PREFIX":   "path_prefix",
	EnvPrefix + "SRC_ROOT":      "src_root",
	EnvPrefix + "HTTP_TIMEOUT":  "http.timeout",
	EnvPrefix + "HTTP_RETRIES":  "http.retries",
	EnvPrefix + "BADGE_RED":     "badge.red",
	EnvPrefix + "BADGE_YELLOW":  "badge.yellow",
	EnvPrefix + "OUTPUT_FORMAT": "output.format",
	EnvPrefix + "OUTPUT_SORT":   "output.sort",
}

// LoadOptions lists the optional sources of a Load call.
type LoadOptions struct {
	// Fs is used to read File. Defaults to the OS filesystem.
	Fs afero.Fs
	// File is an optional YAML configuration file.
	File string
	// EnvFile is a dotenv file loaded into the process environment when it
	// exists. Variables already set are not overridden.
	EnvFile string
	// Overrides are applied last, keyed by configuration path.
	Overrides map[string]any
}

// Load builds the configuration from all sources and validates it.
func Load(opts LoadOptions) (*Config, error) {
	if opts.Fs == nil {
		opts.Fs = afero.NewOsFs()
	}

	k := koanf.New(".")
	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if opts.File != "" {
		if err := k.Load(yamlFile(opts.Fs, opts.File), nil); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", opts.File, err)
		}
	}

	if opts.EnvFile != "" {
		if err := godotenv.Load(opts.EnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load env file %s: %w", opts.EnvFile, err)
		}
	}

	if err := k.Load(env.Provider(".", env.Opt{
		Prefix: EnvPrefix,
		TransformFunc: func(key, value string) (string, any) {
			if path, ok := envToPath[key]; ok {
				return path, value
			}
			return "", nil
		},
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	for key, value := range opts.Overrides {
		if err := k.Set(key, value); err != nil {
			return nil, fmt.Errorf("failed to apply override %s: %w", key, err)
		}
	}

	return unmarshalAndValidate(k)
}

func unmarshalAndValidate(k *koanf.Koanf) (*Config, error) {
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			WeaklyTypedInput: true,
			Result:           &cfg,
			TagName:          "koanf",
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
				mapstructure.StringToSliceHookFunc(","),
			),
		},
	}); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	cfg.Output.Format = strings.ToLower(cfg.Output.Format)
	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the configuration against its struct tags.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("configuration cannot be nil")
	}
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}
	return nil
}
