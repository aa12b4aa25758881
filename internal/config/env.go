package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Password storage schemes. Plaintext reproduces the original prototype
// behavior and must not be used outside demos; set PASSWORD_SCHEME=bcrypt
// for anything real.
const (
	SchemePlaintext = "plaintext"
	SchemeBcrypt    = "bcrypt"
)

type Config struct {
	DatabaseURL        string
	GoogleCloudProject string
	GeminiAPIKey       string
	GenModel           string
	MarketPricesCX     string
	GovSchemesCX       string
	WeatherCX          string
	JWTSecret          string
	PasswordScheme     string
	Port               string
	TranscribeWorkers  int
}

// LoadConfig loads the environment variables and returns config
func LoadConfig() *Config {

	_ = godotenv.Load()

	cfg := &Config{
		DatabaseURL:        getEnv("DATABASE_URL", getEnv("POSTGRES_URL", "")),
		GoogleCloudProject: getEnv("GOOGLE_CLOUD_PROJECT", ""),
		GeminiAPIKey:       getEnv("GEMINI_API_KEY", ""),
		GenModel:           getEnv("GEN_MODEL", "gemini-2.5-flash"),
		MarketPricesCX:     getEnv("MARKET_PRICES_SEARCH_ENGINE_ID", ""),
		GovSchemesCX:       getEnv("GOV_SCHEMES_SEARCH_ENGINE_ID", ""),
		WeatherCX:          getEnv("WEATHER_SEARCH_ENGINE_ID", ""),
		JWTSecret:          getEnv("JWT_SECRET", ""),
		PasswordScheme:     getEnv("PASSWORD_SCHEME", SchemePlaintext),
		Port:               getEnv("PORT", "8080"),
		TranscribeWorkers:  getEnvInt("TRANSCRIBE_WORKERS", 4),
	}

	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL not set")
	}
	if cfg.GeminiAPIKey == "" {
		log.Fatal("GEMINI_API_KEY not set")
	}
	if cfg.MarketPricesCX == "" {
		log.Fatal("MARKET_PRICES_SEARCH_ENGINE_ID not set")
	}
	if cfg.GovSchemesCX == "" {
		log.Fatal("GOV_SCHEMES_SEARCH_ENGINE_ID not set")
	}
	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET not set")
	}
	// WeatherCX may be empty: the weather tool degrades at call time.
	if cfg.WeatherCX == "" {
		log.Println("WARN: WEATHER_SEARCH_ENGINE_ID not set, weather tool disabled")
	}
	if cfg.PasswordScheme != SchemePlaintext && cfg.PasswordScheme != SchemeBcrypt {
		log.Fatalf("PASSWORD_SCHEME must be %q or %q", SchemePlaintext, SchemeBcrypt)
	}
	if cfg.PasswordScheme == SchemePlaintext {
		log.Println("WARN: PASSWORD_SCHEME=plaintext stores raw passwords (legacy prototype mode)")
	}

	return cfg
}

// Helper to read environment variables with a default fallback
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, def int) int {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("WARN: %s=%q not an int, using default %d", key, v, def)
		return def
	}
	return n
}
