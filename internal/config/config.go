package config

import (
	_ "embed"
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/kozaktomas/face-check/internal/match"
)

//go:embed matching.yaml
var matchingYAML []byte

type Config struct {
	Detector DetectorConfig
	Database DatabaseConfig
	Matching MatchingConfig
	Web      WebConfig
}

type DetectorConfig struct {
	URL string // defaults to http://localhost:8000
	Dim int    // defaults to 512
}

type DatabaseConfig struct {
	URL          string // PostgreSQL connection URL
	MaxOpenConns int    // Maximum open connections (default 25)
	MaxIdleConns int    // Maximum idle connections (default 5)
}

type MatchingConfig struct {
	Threshold      float64 `yaml:"threshold"`
	MatchColor     string  `yaml:"match_color"`
	NonMatchColor  string  `yaml:"non_match_color"`
	LineWidth      int     `yaml:"line_width"`
	LabelPrecision int     `yaml:"label_precision"`
}

type WebConfig struct {
	Host string // defaults to empty (all interfaces)
	Port int    // defaults to 8080
}

// Addr returns the host:port pair the web server binds to.
func (c *WebConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Style translates the matching configuration into annotation drawing
// parameters. Invalid color strings surface as errors rather than being
// silently replaced.
func (c *MatchingConfig) Style() (match.Style, error) {
	style := match.DefaultStyle()

	if c.MatchColor != "" {
		col, err := match.ParseHexColor(c.MatchColor)
		if err != nil {
			return match.Style{}, fmt.Errorf("invalid match color: %w", err)
		}
		style.MatchColor = col
	}
	if c.NonMatchColor != "" {
		col, err := match.ParseHexColor(c.NonMatchColor)
		if err != nil {
			return match.Style{}, fmt.Errorf("invalid non-match color: %w", err)
		}
		style.NonMatchColor = col
	}
	if c.LineWidth > 0 {
		style.LineWidth = c.LineWidth
	}
	if c.LabelPrecision > 0 {
		style.LabelPrecision = c.LabelPrecision
	}
	return style, nil
}

// envInt reads an environment variable and parses it as a positive integer.
// Returns the default value if the env var is unset, empty, or invalid.
func envInt(key string, defaultVal int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	return defaultVal
}

// envFloat reads an environment variable and parses it as a float in
// [0, 1]. Returns the default value if unset, empty, or out of range.
func envFloat(key string, defaultVal float64) float64 {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && f >= 0 && f <= 1 {
		return f
	}
	return defaultVal
}

func envString(key, defaultVal string) string {
	if s := os.Getenv(key); s != "" {
		return s
	}
	return defaultVal
}

func Load() *Config {
	var embedded struct {
		Matching MatchingConfig `yaml:"matching"`
	}
	if err := yaml.Unmarshal(matchingYAML, &embedded); err != nil {
		// This is an embedded file so this error should never happen in practice
		panic("failed to unmarshal embedded matching.yaml: " + err.Error())
	}

	matching := embedded.Matching
	matching.Threshold = envFloat("MATCH_THRESHOLD", matching.Threshold)
	matching.MatchColor = envString("MATCH_COLOR", matching.MatchColor)
	matching.NonMatchColor = envString("NON_MATCH_COLOR", matching.NonMatchColor)
	matching.LineWidth = envInt("MATCH_LINE_WIDTH", matching.LineWidth)
	matching.LabelPrecision = envInt("MATCH_LABEL_PRECISION", matching.LabelPrecision)

	return &Config{
		Detector: DetectorConfig{
			URL: os.Getenv("DETECTOR_URL"),
			Dim: envInt("EMBEDDING_DIM", match.DefaultDim),
		},
		Database: DatabaseConfig{
			URL:          os.Getenv("DATABASE_URL"),
			MaxOpenConns: envInt("DATABASE_MAX_OPEN_CONNS", 25),
			MaxIdleConns: envInt("DATABASE_MAX_IDLE_CONNS", 5),
		},
		Matching: matching,
		Web: WebConfig{
			Host: os.Getenv("WEB_HOST"),
			Port: envInt("WEB_PORT", 8080),
		},
	}
}
