package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/v2"
)

const envPrefix = "ETLD_"

// configFileEnv names the optional config file layered between defaults and env.
const configFileEnv = envPrefix + "CONFIG"

// AppConfig is the top-level configuration.
type AppConfig struct {
	// Env is the runtime environment, either "dev" or "prod".
	Env   string      `koanf:"env" validate:"required,oneof=dev prod"`
	Log   LogConfig   `koanf:"log"`
	Rules RulesConfig `koanf:"rules"`
}

type LogConfig struct {
	Level string `koanf:"level" validate:"required,oneof=debug info warn error"`
}

// RulesConfig controls where the rule list comes from and how the indexed
// snapshot is kept.
type RulesConfig struct {
	// File is the public suffix list to parse.
	File string `koanf:"file" validate:"required"`

	// DB is the bbolt snapshot path. Empty disables the snapshot.
	DB string `koanf:"db"`

	// Reset purges the snapshot before rebuilding it, restarting versions at 1.
	Reset bool `koanf:"reset"`

	// CacheSize is the lookup cache capacity; 0 disables caching.
	CacheSize int `koanf:"cache_size" validate:"gte=0"`

	// BloomFPRate is the target false-positive rate of the lookup pre-filter.
	BloomFPRate float64 `koanf:"bloom_fp_rate" validate:"gt=0,lt=1"`
}

// DEFAULT_APP_CONFIG holds the values used when neither a config file nor
// the environment override them.
var DEFAULT_APP_CONFIG = AppConfig{
	Env: "prod",
	Log: LogConfig{Level: "info"},
	Rules: RulesConfig{
		File:        "/usr/share/publicsuffix/public_suffix_list.dat",
		DB:          "",
		Reset:       false,
		CacheSize:   1024,
		BloomFPRate: 0.01,
	},
}

// envKeys maps ETLD_* variable names (prefix stripped) to config paths.
var envKeys = map[string]string{
	"ENV":                 "env",
	"LOG_LEVEL":           "log.level",
	"RULES_FILE":          "rules.file",
	"RULES_DB":            "rules.db",
	"RULES_RESET":         "rules.reset",
	"RULES_CACHE_SIZE":    "rules.cache_size",
	"RULES_BLOOM_FP_RATE": "rules.bloom_fp_rate",
}

// defaultLoader loads DEFAULT_APP_CONFIG through the structs provider.
var defaultLoader = func(k *koanf.Koanf) error {
	return k.Load(structs.Provider(DEFAULT_APP_CONFIG, "koanf"), nil)
}

// fileLoader loads the file named by ETLD_CONFIG, if any. The parser is
// picked from the extension.
var fileLoader = func(k *koanf.Koanf) error {
	path := strings.TrimSpace(os.Getenv(configFileEnv))
	if path == "" {
		return nil
	}
	parser, err := parserFor(path)
	if err != nil {
		return err
	}
	return k.Load(file.Provider(path), parser)
}

// envLoader loads ETLD_* variables listed in envKeys. Others are ignored.
var envLoader = func(k *koanf.Koanf) error {
	return k.Load(env.Provider(".", env.Opt{
		Prefix: envPrefix,
		TransformFunc: func(key, value string) (string, any) {
			path, ok := envKeys[strings.TrimPrefix(key, envPrefix)]
			if !ok {
				return "", nil
			}
			return path, strings.TrimSpace(value)
		},
	}), nil)
}

func parserFor(path string) (koanf.Parser, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		return yaml.Parser(), nil
	case ".json":
		return json.Parser(), nil
	case ".toml":
		return toml.Parser(), nil
	default:
		return nil, fmt.Errorf("unsupported config file type %q", ext)
	}
}

// Load builds an AppConfig from defaults, the optional config file and the
// environment, in that order, and validates it.
func Load() (*AppConfig, error) {
	k := koanf.New(".")

	if err := defaultLoader(k); err != nil {
		return nil, fmt.Errorf("error loading default config: %w", err)
	}
	if err := fileLoader(k); err != nil {
		return nil, fmt.Errorf("error loading config file: %w", err)
	}
	if err := envLoader(k); err != nil {
		return nil, fmt.Errorf("error loading env: %w", err)
	}

	var cfg AppConfig
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	return &cfg, nil
}
