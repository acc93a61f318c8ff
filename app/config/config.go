package config

import (
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// MatcherCfg holds the request-path matching thresholds.
type MatcherCfg struct {
	// ProximityMeters is the creation-time duplicate radius. Deliberately
	// tighter than the optimizer's clustering radius: on first sight the
	// matcher must not wrongly unify distinct addresses.
	ProximityMeters float64 `yaml:"proximity_meters" json:"proximity_meters"`
}

// OptimizerCfg holds the batch clustering thresholds.
type OptimizerCfg struct {
	// ClusterDistanceMeters gates which pairs are even scored.
	ClusterDistanceMeters float64 `yaml:"cluster_distance_meters" json:"cluster_distance_meters"`
	// ScoreThreshold is the minimum combined proximity/text score for two
	// records to share a cluster.
	ScoreThreshold float64 `yaml:"score_threshold" json:"score_threshold"`
}

// CacheCfg holds resolve-cache settings.
type CacheCfg struct {
	L1Size   int `yaml:"l1_size" json:"l1_size"`
	TTLHours int `yaml:"ttl_hours" json:"ttl_hours"`
}

// RegistryCfg is the matcher/optimizer configuration loaded from yaml.
type RegistryCfg struct {
	Matcher   MatcherCfg   `yaml:"matcher" json:"matcher"`
	Optimizer OptimizerCfg `yaml:"optimizer" json:"optimizer"`
	Cache     CacheCfg     `yaml:"cache" json:"cache"`
}

var C = Defaults()

// Defaults returns the stock threshold values; Load starts from these so a
// partial yaml file only overrides what it names.
func Defaults() RegistryCfg {
	return RegistryCfg{
		Matcher:   MatcherCfg{ProximityMeters: 10},
		Optimizer: OptimizerCfg{ClusterDistanceMeters: 50, ScoreThreshold: 0.85},
		Cache:     CacheCfg{L1Size: 1000, TTLHours: 24},
	}
}

// Load reads the yaml config at path into the package-level config.
func Load(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	cfg := Defaults()
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return err
	}
	// ENV overrides
	if v := os.Getenv("MATCH_PROXIMITY_METERS"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Matcher.ProximityMeters = f
		}
	}
	if v := os.Getenv("CLUSTER_DISTANCE_METERS"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Optimizer.ClusterDistanceMeters = f
		}
	}
	C = cfg
	return nil
}

// RequestTimeout bounds a single request-path geocode + store round trip.
func RequestTimeout() time.Duration { return 1500 * time.Millisecond }
