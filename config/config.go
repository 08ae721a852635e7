package config

import (
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

type Service struct {
	URL string `mapstructure:"url"`
}

type Services struct {
	Align Service `mapstructure:"align"` // forced alignment + acoustic extraction
	Parse Service `mapstructure:"parse"` // constituency parsing
}

// Analysis holds the stress-analysis parameters.
type Analysis struct {
	TimeStep            float64 `mapstructure:"time_step"`             // sec between acoustic samples
	MonoStressThreshold int     `mapstructure:"mono_stress_threshold"` // percentile for lone syllables
}

// Pause holds the syntactic-tagging duration window; independent from the
// scorer's significant-pause filter.
type Pause struct {
	Min        float64 `mapstructure:"min"` // sec
	Max        float64 `mapstructure:"max"` // sec
	TagSetFile string  `mapstructure:"tag_set_file"`
}

type Score struct {
	SignificantPause float64 `mapstructure:"significant_pause"` // sec
}

type Paths struct {
	Dictionary string `mapstructure:"dictionary"`
	Audio      string `mapstructure:"audio"`
	Outputs    string `mapstructure:"outputs"`
}

type Root struct {
	Pipeline struct {
		Name    string `mapstructure:"name"`
		Version string `mapstructure:"version"`
		LogLvl  string `mapstructure:"log_level"`
	} `mapstructure:"pipeline"`
	Services Services `mapstructure:"services"`
	Analysis Analysis `mapstructure:"analysis"`
	Pause    Pause    `mapstructure:"pause"`
	Score    Score    `mapstructure:"score"`
	Paths    Paths    `mapstructure:"paths"`
}

// Load reads config.yaml for the environment selected by CONFIG_ENV (default
// dev), falling back to the working directory, with FLUENCY_* env-var
// overrides. A missing file yields the defaults.
func Load() (*Root, error) {
	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(filepath.Join("config", env))
	v.AddConfigPath(".")
	v.SetEnvPrefix("FLUENCY")
	v.AutomaticEnv()

	v.SetDefault("pipeline.name", "fluency-pipeline")
	v.SetDefault("pipeline.log_level", "info")
	v.SetDefault("analysis.time_step", 0.01)
	v.SetDefault("analysis.mono_stress_threshold", 50)
	v.SetDefault("pause.min", 0.18)
	v.SetDefault("pause.max", 2.0)
	v.SetDefault("score.significant_pause", 0.5)
	v.SetDefault("paths.outputs", "outputs")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg Root
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
