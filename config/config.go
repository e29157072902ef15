package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

//go:embed config.yml
var embeddedConfig []byte

// JWTConfig holds token signing material and lifetimes.
type JWTConfig struct {
	SecretKey  string        `mapstructure:"secretKey"`
	AccessTTL  time.Duration `mapstructure:"accessTTL"`
	RefreshTTL time.Duration `mapstructure:"refreshTTL"`
}

// ResolverConfig drives the place resolution pipeline: one geocoding
// endpoint, Overpass mirrors in priority order and a shrinking radius
// sequence in metres.
type ResolverConfig struct {
	GeocodeURL        string        `mapstructure:"geocodeURL"`
	UserAgent         string        `mapstructure:"userAgent"`
	OverpassEndpoints []string      `mapstructure:"overpassEndpoints"`
	RadiiM            []int         `mapstructure:"radiiM"`
	AttemptTimeout    time.Duration `mapstructure:"attemptTimeout"`
	DefaultLimit      int           `mapstructure:"defaultLimit"`
	MaxLimit          int           `mapstructure:"maxLimit"`
}

// CacheConfig selects the query-cache backend ("memory" or "postgres") and
// the TTLs of the two cached read paths.
type CacheConfig struct {
	Backend         string        `mapstructure:"backend"`
	PlacesTTL       time.Duration `mapstructure:"placesTTL"`
	ItemsTTL        time.Duration `mapstructure:"itemsTTL"`
	CleanupInterval time.Duration `mapstructure:"cleanupInterval"`
}

type PlannerConfig struct {
	PerDayCap int `mapstructure:"perDayCap"`
	MaxDays   int `mapstructure:"maxDays"`
}

type Config struct {
	Mode         string `mapstructure:"mode"`
	Dotenv       string `mapstructure:"dotenv"`
	Repositories struct {
		Postgres struct {
			Host     string `mapstructure:"host"`
			Password string `mapstructure:"password"`
			Port     string `mapstructure:"port"`
			Username string `mapstructure:"username"`
			DB       string `mapstructure:"db"`
			SSLMode  string `mapstructure:"sslmode"`
		} `mapstructure:"postgres"`
	} `mapstructure:"repositories"`
	Server struct {
		HTTPPort    string        `mapstructure:"HTTPPort"`
		MetricsPort string        `mapstructure:"metricsPort"`
		Timeout     time.Duration `mapstructure:"HTTPTimeout"`
	} `mapstructure:"server"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Resolver ResolverConfig `mapstructure:"resolver"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Planner  PlannerConfig  `mapstructure:"planner"`
}

func InitConfig() (Config, error) {
	var config Config
	v := viper.New()

	v.AddConfigPath(".")
	v.AddConfigPath("config")
	v.AddConfigPath("/app/config")

	v.SetConfigName("config")
	v.SetConfigType("yml")

	err := v.ReadInConfig()
	if err != nil {
		fmt.Printf("Warning: Failed to find file-based config: %s. Falling back to embedded config.\n", err)
		if err = v.ReadConfig(bytes.NewReader(embeddedConfig)); err != nil {
			return Config{}, fmt.Errorf("failed to read embedded config: %s", err)
		}
	}

	if err = v.Unmarshal(&config); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %s", err)
	}
	return config, nil
}
