package quizverify

import (
	"log"
	"os"
	"strconv"
)

// Config is the runtime configuration shared by the commands
type Config struct {
	OpenAIAPIKey  string
	OpenAIBaseURL string
	Model         string

	DBPath string
	LogDir string

	HTTPAddr   string
	SessionKey string

	Thresholds Thresholds
	Limits     Limits
}

// ConfigFromEnv reads the configuration from the environment, falling back to defaults
func ConfigFromEnv() Config {
	th := DefaultThresholds()
	lim := DefaultLimits()
	return Config{
		OpenAIAPIKey:  os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL: os.Getenv("OPENAI_BASE_URL"),
		Model:         os.Getenv("QUIZVERIFY_MODEL"),
		DBPath:        envOr("QUIZVERIFY_DB", "./quizverify.db"),
		LogDir:        os.Getenv("QUIZVERIFY_LOG_DIR"),
		HTTPAddr:      ":" + envOr("PORT", "8180"),
		SessionKey:    os.Getenv("SESSION_KEY"),
		Thresholds: Thresholds{
			MatchFloor:      envFloat("QUIZVERIFY_MATCH_FLOOR", th.MatchFloor),
			VerifiedFloor:   envFloat("QUIZVERIFY_VERIFIED_FLOOR", th.VerifiedFloor),
			DistinctCeiling: envFloat("QUIZVERIFY_DISTINCT_CEILING", th.DistinctCeiling),
		},
		Limits: Limits{
			MaxContentBytes: envInt("QUIZVERIFY_MAX_CONTENT_BYTES", lim.MaxContentBytes),
			MaxQuestions:    envInt("QUIZVERIFY_MAX_QUESTIONS", lim.MaxQuestions),
		},
	}
}

// EngineOptions turns the configuration into engine options
func (c Config) EngineOptions() []Option {
	return []Option{WithThresholds(c.Thresholds), WithLimits(c.Limits)}
}

func envOr(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

func envFloat(k string, def float64) float64 {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f < 0 || f > 1 {
		log.Printf("Ignoring %s=%q: want a number in [0,1]", k, v)
		return def
	}
	return f
}

func envInt(k string, def int) int {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		log.Printf("Ignoring %s=%q: want a non-negative integer", k, v)
		return def
	}
	return n
}
