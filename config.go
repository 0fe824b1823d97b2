package main

import (
	"crypto/rand"
	"encoding/hex"
	"log"
	"os"
	"strconv"
	"strings"
)

const (
	defaultPort           = "8080"
	defaultDatabaseURL    = "user=postgres password=password dbname=locallibrary host=localhost port=5432 sslmode=disable"
	defaultSendGridFrom   = "circulation@locallibrary.test"
	defaultSendGridName   = "Local Library"
	defaultRateLimitRPS   = 2.0
	defaultRateLimitBurst = 4
	defaultHomeGenres     = "Mystery,Novel,Science & Math"
)

type config struct {
	port               string
	databaseURL        string
	jwtSecret          []byte
	schedulerToken     string
	rateLimitRPS       float64
	rateLimitBurst     int
	corsAllowedOrigins []string
	sendGridAPIKey     string
	sendGridFromEmail  string
	sendGridFromName   string
	librarianUsername  string
	librarianPassword  string
	homeGenres         []string
}

func loadConfig() config {
	port := os.Getenv("PORT")
	if port == "" {
		port = defaultPort
	}

	dbURL := os.Getenv("DB_CONNECTION_STRING")
	if dbURL == "" {
		dbURL = defaultDatabaseURL
		log.Println("WARNING: DB_CONNECTION_STRING not set, using default local connection string.")
	}

	jwtSecret := []byte(os.Getenv("JWT_SECRET"))
	if len(jwtSecret) == 0 {
		jwtSecret = randomSecret()
		log.Println("WARNING: JWT_SECRET not set. Using a random secret; tokens will not survive a restart.")
	}

	schedulerToken := os.Getenv("SCHEDULER_TOKEN")
	if schedulerToken == "" {
		log.Println("WARNING: SCHEDULER_TOKEN not set. The scheduler tick endpoint will reject every request.")
	}

	sendGridAPIKey := os.Getenv("SENDGRID_API_KEY")
	if sendGridAPIKey == "" {
		log.Println("WARNING: SENDGRID_API_KEY not set. Overdue reminders will only be logged.")
	}

	sendGridFrom := os.Getenv("SENDGRID_FROM_EMAIL")
	if sendGridFrom == "" {
		sendGridFrom = defaultSendGridFrom
	}

	sendGridName := os.Getenv("SENDGRID_FROM_NAME")
	if sendGridName == "" {
		sendGridName = defaultSendGridName
	}

	homeGenres := defaultHomeGenres
	if v, ok := os.LookupEnv("HOME_GENRES"); ok {
		homeGenres = v
	}

	return config{
		port:               port,
		databaseURL:        dbURL,
		jwtSecret:          jwtSecret,
		schedulerToken:     schedulerToken,
		rateLimitRPS:       envFloat("RATE_LIMIT_RPS", defaultRateLimitRPS),
		rateLimitBurst:     envInt("RATE_LIMIT_BURST", defaultRateLimitBurst),
		corsAllowedOrigins: splitList(os.Getenv("CORS_ALLOWED_ORIGINS")),
		sendGridAPIKey:     sendGridAPIKey,
		sendGridFromEmail:  sendGridFrom,
		sendGridFromName:   sendGridName,
		librarianUsername:  os.Getenv("BOOTSTRAP_LIBRARIAN_USERNAME"),
		librarianPassword:  os.Getenv("BOOTSTRAP_LIBRARIAN_PASSWORD"),
		homeGenres:         splitList(homeGenres),
	}
}

func envFloat(key string, fallback float64) float64 {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v <= 0 {
		log.Printf("WARNING: invalid %s=%q, using %v", key, raw, fallback)
		return fallback
	}
	return v
}

func envInt(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		log.Printf("WARNING: invalid %s=%q, using %d", key, raw, fallback)
		return fallback
	}
	return v
}

// splitList parses a comma-separated list, dropping blank entries.
func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func randomSecret() []byte {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		log.Fatalf("Failed to generate JWT secret: %v", err)
	}
	return []byte(hex.EncodeToString(buf))
}
