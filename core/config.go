package core

import (
	"log"
	"os"

	"dario.cat/mergo"
	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

const DefaultConfigFile = "hx.config.yml"

type Config struct {
	TemplatesDir string `yaml:"templatesDir" env:"HX_TEMPLATES_DIR"`
	PublicDir    string `yaml:"publicDir" env:"HX_PUBLIC_DIR"`
	OutputDir    string `yaml:"outputDir" env:"HX_OUTPUT_DIR"`
	Database     string `yaml:"database" env:"HX_DATABASE"`
	CacheEnabled bool   `yaml:"cache" env:"HX_CACHE"`
	DebugHeaders bool   `yaml:"debugHeaders" env:"HX_DEBUG_HEADERS"`
	DebugLogs    bool   `yaml:"debugLogs" env:"HX_DEBUG_LOGS"`
	Minify       bool   `yaml:"minify" env:"HX_MINIFY"`
	ItemKey      string `yaml:"itemKey" env:"HX_ITEM_KEY"`
	ItemsKey     string `yaml:"itemsKey" env:"HX_ITEMS_KEY"`
}

func DefaultConfig() Config {
	return Config{
		PublicDir: "public",
		OutputDir: "./cache",
		ItemKey:   "item",
		ItemsKey:  "items",
	}
}

// LoadConfig reads path, fills unset keys from DefaultConfig and applies HX_*
// environment overrides. A missing or unreadable file yields the defaults.
func LoadConfig(path string) Config {
	defaults := DefaultConfig()

	var cfg Config
	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			log.Printf("hx: ignoring malformed config %s: %v", path, err)
			cfg = Config{}
		}
	}

	if err := mergo.Merge(&cfg, defaults); err != nil {
		return defaults
	}

	if err := env.Parse(&cfg); err != nil {
		log.Printf("hx: ignoring environment overrides: %v", err)
	}

	return cfg
}
