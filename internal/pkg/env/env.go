package env

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

// Candidate .env locations, relative to the working directory.
var envFiles = []string{
	".env",          // Current directory
	"../../.env",    // From cmd/tokenfox to project root
	"../../../.env", // Fallback for deeper nesting
}

// SetupEnvFile loads the first .env file found into the process environment.
// Variables that are already set win over the file. A missing file is not an
// error: containers usually inject the environment directly.
func SetupEnvFile() {
	for _, envFile := range envFiles {
		if _, err := os.Stat(envFile); err != nil {
			continue
		}
		if err := godotenv.Load(envFile); err != nil {
			log.Printf("Warning: could not load %s: %v", envFile, err)
			continue
		}
		log.Printf("Loaded environment from %s", envFile)
		return
	}
	log.Printf("No .env file found, using process environment")
}

// GetEnv returns the environment value for key, or def when unset or empty.
func GetEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}
