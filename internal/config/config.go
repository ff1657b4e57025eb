package config // package config loads application configuration from environment variables

import (
	"log"     // log is used to report configuration errors and halt execution
	"os"      // os provides access to environment variables
	"strconv" // strconv converts strings to other types
)

// Config holds all runtime configuration values. Each field corresponds
// to an environment variable. The types reflect how the values are used
// in the application: strings for identifiers and secrets, ints for
// durations and costs. The signing secret and TTLs are read once here
// at startup and injected into their consumers; nothing reads them as
// ambient globals afterwards.
type Config struct {
	Env              string // application environment (e.g. "dev", "prod")
	Port             string // HTTP port to listen on
	DBUser           string // database username
	DBPass           string // database password (optional)
	DBHost           string // database host address
	DBPort           string // database port number
	DBName           string // database name
	SecretKey        string // secret used to sign reset tokens
	BcryptCost       int    // bcrypt cost for password hashing
	ResetTokenTTLMin int    // reset token maximum age in minutes
	SessionTTLHours  int    // session lifetime in hours
	RememberTTLDays  int    // session lifetime in days with the remember flag
	UploadDir        string // directory for uploaded avatar images
}

// Load reads configuration values from environment variables and
// returns a Config. Required variables are enforced by must() and
// missing values cause the program to exit with a fatal log message.
func Load() Config {
	return Config{
		Env:              must("APP_ENV"),
		Port:             must("APP_PORT"),
		DBUser:           must("DB_USER"),
		DBPass:           os.Getenv("DB_PASS"), // empty allowed
		DBHost:           must("DB_HOST"),
		DBPort:           must("DB_PORT"),
		DBName:           must("DB_NAME"),
		SecretKey:        must("SECRET_KEY"),
		BcryptCost:       mustInt("BCRYPT_COST"),
		ResetTokenTTLMin: intenv("RESET_TOKEN_TTL_MIN", 30),
		SessionTTLHours:  intenv("SESSION_TTL_HOURS", 24),
		RememberTTLDays:  intenv("REMEMBER_TTL_DAYS", 30),
		UploadDir:        getenv("UPLOAD_DIR", "static/profile_pics"),
	}
}

// must retrieves the value of a required environment variable. If the
// variable is unset or empty, the application logs a fatal error and
// exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// mustInt is like must() but converts the retrieved string into an
// integer. If conversion fails, the application logs a fatal error and
// exits.
func mustInt(key string) int {
	s := must(key)
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// intenv reads an optional integer environment variable. An unset or
// empty variable yields the default; an unparsable value is reported
// and also yields the default rather than silently becoming zero,
// which for the TTL variables would mean instantly-expired tokens and
// sessions.
func intenv(key string, def int) int {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Printf("config: invalid int for %s: %q, using default %d", key, s, def)
		return def
	}
	return n
}
