package config // package config loads application configuration from environment variables

import (
    "log"     // log is used to report configuration errors and halt execution
    "os"      // os provides access to environment variables
    "strconv" // strconv converts strings to other types

    "github.com/joho/godotenv"
)

// Config holds the core runtime configuration values.  Each field corresponds
// to an environment variable.  Feature-specific settings (ledger, assistant,
// voice, mail, cache, rate limiting) have their own loaders in this package.
type Config struct {
    Env            string // application environment (e.g. "dev", "prod")
    Port           string // HTTP port to listen on
    DBUser         string // database username
    DBPass         string // database password (optional)
    DBHost         string // database host address
    DBPort         string // database port number
    DBName         string // database name
    JWTSecret      string // secret used to sign staff JWTs
    AccessTTLMin   int    // access token time‑to‑live in minutes
    RefreshTTLDays int    // refresh token time‑to‑live in days
    BcryptCost     int    // bcrypt cost for staff password hashing
    ManagerEmail   string // bootstrap MANAGER account created when no staff exist
    ManagerPass    string // password of the bootstrap account
    LogDir         string // directory of booking.log written by the event consumer
}

// LoadDotEnv reads a .env file into the process environment when one exists.
// Variables that are already set are not overridden.  A missing file is not an
// error; a malformed one is logged.
func LoadDotEnv() {
    path := envStr("ENV_FILE", ".env")
    if _, err := os.Stat(path); err != nil {
        return
    }
    if err := godotenv.Load(path); err != nil {
        log.Printf("config: failed to load %s: %v", path, err)
    }
}

// Load reads configuration values from environment variables and returns a
// Config.  Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.
func Load() Config {
    port := must("APP_PORT")
    return Config{
        Env:            must("APP_ENV"),                   // environment (dev/test/prod)
        Port:           port,                              // port to bind the HTTP server
        DBUser:         must("DB_USER"),                   // database user
        DBPass:         os.Getenv("DB_PASS"),              // database password (empty allowed)
        DBHost:         must("DB_HOST"),                   // database host
        DBPort:         must("DB_PORT"),                   // database port
        DBName:         must("DB_NAME"),                   // database name
        JWTSecret:      must("JWT_SECRET"),                // secret used for signing JWTs
        AccessTTLMin:   mustInt("ACCESS_TOKEN_TTL_MIN"),   // TTL for access tokens in minutes
        RefreshTTLDays: mustInt("REFRESH_TOKEN_TTL_DAYS"), // TTL for refresh tokens in days
        BcryptCost:     envInt("BCRYPT_COST", 12),
        ManagerEmail:   os.Getenv("BOOTSTRAP_MANAGER_EMAIL"),
        ManagerPass:    os.Getenv("BOOTSTRAP_MANAGER_PASSWORD"),
        LogDir:         envStr("BOOKING_LOG_DIR", "logs"),
    }
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
    v, ok := os.LookupEnv(key)
    if !ok || v == "" {
        log.Fatalf("missing required env var: %s", key)
    }
    return v
}

// mustInt is like must() but converts the retrieved string into an integer.
// If conversion fails, the application logs a fatal error and exits.
func mustInt(key string) int {
    s := must(key)
    n, err := strconv.Atoi(s)
    if err != nil {
        log.Fatalf("invalid int for %s: %q", key, s)
    }
    return n
}
