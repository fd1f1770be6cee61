package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// VariationPreset holds the jitter magnitudes for one named variation level.
type VariationPreset struct {
	StartMinutes int
	EndMinutes   int
	BreakMinutes int
}

// BreakTier maps a shift duration ceiling (hours) to a break length (minutes).
type BreakTier struct {
	MaxHours     float64
	BreakMinutes int
}

type Config struct {
	DBPath    string
	OutputDir string
	FontsDir  string

	MinTextChars int
	SamplePage   int
	MaxPages     int

	EarliestStart string
	LatestStart   string
	EarliestEnd   string
	LatestEnd     string

	DefaultLevel string
	Presets      map[string]VariationPreset
	BreakTiers   []BreakTier

	DefaultFont     string
	DefaultFontSize float64
	FontSearchPaths []string
}

func Load() (Config, error) {
	_ = godotenv.Load()

	cwd, err := os.Getwd()
	if err != nil {
		return Config{}, err
	}

	fontsDir := getEnv("FONTS_DIR", filepath.Join(cwd, "fonts"))

	cfg := Config{
		DBPath:    getEnv("DB_PATH", filepath.Join(cwd, "data", "app.db")),
		OutputDir: getEnv("OUTPUT_DIR", filepath.Join(cwd, "out")),
		FontsDir:  fontsDir,

		MinTextChars: getEnvInt("EXTRACT_MIN_TEXT_CHARS", 100),
		SamplePage:   getEnvInt("ANALYZE_SAMPLE_PAGE", 0),
		MaxPages:     getEnvInt("EXTRACT_MAX_PAGES", 50),

		EarliestStart: getEnv("TIME_EARLIEST_START", "06:00"),
		LatestStart:   getEnv("TIME_LATEST_START", "10:00"),
		EarliestEnd:   getEnv("TIME_EARLIEST_END", "14:00"),
		LatestEnd:     getEnv("TIME_LATEST_END", "23:00"),

		DefaultLevel: getEnv("VARIATION_LEVEL", "moderate"),
		Presets: map[string]VariationPreset{
			"minimal":     {StartMinutes: 5, EndMinutes: 5, BreakMinutes: 2},
			"moderate":    {StartMinutes: 15, EndMinutes: 15, BreakMinutes: 5},
			"significant": {StartMinutes: 30, EndMinutes: 30, BreakMinutes: 10},
		},
		BreakTiers: []BreakTier{
			{MaxHours: 4, BreakMinutes: 0},
			{MaxHours: 6, BreakMinutes: 15},
			{MaxHours: 8, BreakMinutes: 30},
		},

		DefaultFont:     getEnv("DEFAULT_FONT", "Arial"),
		DefaultFontSize: getEnvFloat("DEFAULT_FONT_SIZE", 10),
		FontSearchPaths: []string{
			"/usr/share/fonts/truetype/liberation",
			"/usr/share/fonts/truetype/dejavu",
			"/usr/share/fonts/truetype/noto",
			"/System/Library/Fonts",
			"/Library/Fonts",
			"C:/Windows/Fonts",
			fontsDir,
		},
	}

	return cfg, nil
}

// Preset resolves a variation level name; unrecognized names fall back to moderate.
func (c Config) Preset(level string) VariationPreset {
	if p, ok := c.Presets[strings.ToLower(strings.TrimSpace(level))]; ok {
		return p
	}
	return c.Presets["moderate"]
}

// BreakMinutesFor returns the deterministic break length for a shift duration.
// Durations above the last tier ceiling get the long break.
func (c Config) BreakMinutesFor(hours float64) int {
	for _, tier := range c.BreakTiers {
		if hours <= tier.MaxHours {
			return tier.BreakMinutes
		}
	}
	return 45
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvFloat(key string, fallback float64) float64 {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback
	}
	return parsed
}
