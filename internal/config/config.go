package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port          string
	MongoURI      string
	MongoDBName   string
	MongoTimeout  time.Duration
	JWTSecret     string
	UploadDir     string
	UploadBaseURL string
}

// Load reads configuration from the environment, with a .env file as a
// development convenience.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Printf("Notice: .env file not found: %v. Using system environment variables", err)
	}

	return &Config{
		Port:          getEnv("PORT", "8080"),
		MongoURI:      mongoURI(),
		MongoDBName:   getEnv("MONGO_DBNAME", "furniture_db"),
		MongoTimeout:  15 * time.Second,
		JWTSecret:     getEnv("JWT_SECRET", "dev-secret"),
		UploadDir:     getEnv("UPLOAD_DIR", "uploads"),
		UploadBaseURL: getEnv("UPLOAD_BASE_URL", "/uploads"),
	}
}

// mongoURI prefers an explicit MONGO_URI and otherwise assembles one
// from the individual connection variables.
func mongoURI() string {
	if uri := os.Getenv("MONGO_URI"); uri != "" {
		return uri
	}

	host := getEnv("MONGO_HOST", "localhost")
	port := getEnv("MONGO_PORT", "27017")
	user := getEnv("MONGO_USER", "")
	password := getEnv("MONGO_PASSWORD", "")

	if user != "" && password != "" {
		return fmt.Sprintf("mongodb://%s:%s@%s:%s", user, password, host, port)
	}
	return fmt.Sprintf("mongodb://%s:%s", host, port)
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	log.Printf("Using fallback for env var %s: %s", key, fallback)
	return fallback
}
