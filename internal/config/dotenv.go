package config

import (
	"os"

	"github.com/joho/godotenv"
)

// LoadDotEnv loads .env.local, then .env.<APP_ENV>, then .env.
// godotenv never overwrites a variable that is already set, so process env
// wins over every file and earlier files win over later ones.
// Returns the files actually loaded, in priority order.
func LoadDotEnv() []string {
	candidates := []string{".env.local"}
	if env := os.Getenv("APP_ENV"); env != "" && env != "local" {
		candidates = append(candidates, ".env."+env)
	}
	candidates = append(candidates, ".env")

	var loaded []string
	for _, f := range candidates {
		if _, err := os.Stat(f); err == nil {
			loaded = append(loaded, f)
		}
	}
	if len(loaded) > 0 {
		_ = godotenv.Load(loaded...)
	}
	return loaded
}
