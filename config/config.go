package config

import (
	"strings"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	log "github.com/sirupsen/logrus"
)

var conf = mustLoad()

type Config struct {
	Configuration struct {
		// Matching thresholds
		MinConfidenceScore   float64 `envconfig:"MIN_CONFIDENCE_SCORE" default:"0.70"`
		AmbiguityGap         float64 `envconfig:"AMBIGUITY_GAP" default:"0.05"`
		AmbiguityCeiling     float64 `envconfig:"AMBIGUITY_CEILING" default:"0.9"`
		DurationMatchDeltaMs int     `envconfig:"DURATION_MATCH_DELTA_MS" default:"2000"` // Hard gate: reject candidates outside this delta (in ms)
		TitleGate            float64 `envconfig:"TITLE_GATE" default:"0.7"`
		ArtistGate           float64 `envconfig:"ARTIST_GATE" default:"0.6"`

		// Aggregation
		DefaultSources             string `envconfig:"DEFAULT_SOURCES" default:"apple,lyricsplus,musixmatch-word,musixmatch,spotify"`
		ProviderTimeoutSecs        int    `envconfig:"PROVIDER_TIMEOUT_SECS" default:"10"`
		CircuitBreakerThreshold    int    `envconfig:"CIRCUIT_BREAKER_THRESHOLD" default:"5"`       // Consecutive failures before circuit opens
		CircuitBreakerCooldownSecs int    `envconfig:"CIRCUIT_BREAKER_COOLDOWN_SECS" default:"300"` // Seconds to wait before retrying (default: 5 minutes)

		// Serialization
		DefaultLeadingSilence string `envconfig:"DEFAULT_LEADING_SILENCE" default:"0.020"`

		LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	}

	FeatureFlags struct {
		SkipOpenCircuits bool `envconfig:"FF_SKIP_OPEN_CIRCUITS" default:"true"` // Skip providers whose breaker is open instead of probing them
	}
}

// load loads the configuration from the environment.
func load() (Config, error) {
	err := godotenv.Load()
	if err != nil {
		log.Debugf("No .env file loaded: %v", err)
	}

	cfg := Config{}
	err = envconfig.Process("", &cfg)
	return cfg, err
}

func mustLoad() Config {
	c, err := load()
	if err != nil {
		log.WithError(err).Warnf("Unable to load configuration")
	}

	return c
}

func Get() Config {
	return conf
}

// Sources splits DefaultSources into trimmed, non-empty provider names.
func (c Config) Sources() []string {
	var sources []string
	for _, s := range strings.Split(c.Configuration.DefaultSources, ",") {
		if s = strings.TrimSpace(s); s != "" {
			sources = append(sources, s)
		}
	}
	return sources
}

// ApplyLogLevel sets the global logrus level from LOG_LEVEL, falling back to info.
func (c Config) ApplyLogLevel() {
	level, err := log.ParseLevel(c.Configuration.LogLevel)
	if err != nil {
		log.Warnf("Invalid LOG_LEVEL %q, using info", c.Configuration.LogLevel)
		level = log.InfoLevel
	}
	log.SetLevel(level)
}
