// Package config provides configuration management for the fare path service.
package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"
)

// Config holds the complete application configuration.
type Config struct {
	Server   ServerConfig
	Cache    CacheConfig
	Auth     AuthConfig
	Database DatabaseConfig
	Search   SearchConfig
	Log      LogConfig
}

// LogConfig holds logger configuration.
type LogConfig struct {
	Level  string
	Pretty bool
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port        string
	RateLimit   int
	RateWindow  time.Duration
	CORSOrigins []string
	SwaggerUser string
	SwaggerPass string
}

// CacheConfig holds cache configuration.
type CacheConfig struct {
	Size int
	TTL  time.Duration
}

// AuthConfig holds authentication configuration.
type AuthConfig struct {
	Enabled bool
	APIKeys map[string]bool
	// APIKeyHashes are bcrypt hashes of API keys, as printed by scripts/generate_keys.go.
	APIKeyHashes   []string
	JWTSecretKey   string
	JWTIssuer      string
	AccessTokenTTL time.Duration
}

// DatabaseConfig holds MongoDB configuration.
type DatabaseConfig struct {
	URI                    string
	DatabaseName           string
	RecordsTTL             time.Duration
	MaxPoolSize            int
	ServerSelectionTimeout time.Duration
	Enabled                bool
	// CircuitBreaker configuration
	CircuitBreakerFailureThreshold int
	CircuitBreakerSuccessThreshold int
	CircuitBreakerTimeout          time.Duration
}

// SearchConfig holds the default fare path search limits. The active search profile
// stored in MongoDB overrides them.
type SearchConfig struct {
	// Timeout bounds one pricing transaction.
	Timeout                    time.Duration
	MaxNbrCombMsgThreshold     int
	MultiPaxShortCktTimeout    time.Duration
	ShortCktTimeout            time.Duration
	ShortCktShutdownFPFsTime   time.Duration
	ShortCktKeepValidFPsTime   time.Duration
	ShortCktCombCount          int
	ShortCktStdDevMultiplier   float64
	PlusUpPushBackMax          int
	PlusUpPushBackThreshold    int
	MaxSearchNextLevelFarePath int
	AbortCheckInterval         int
	MaxFailedFarePaths         int
}

// Load creates a Config from environment variables.
func Load() Config {
	return Config{
		Server: ServerConfig{
			Port:        getEnv("PORT", "8080"),
			RateLimit:   getEnvInt("RATE_LIMIT", 100),
			RateWindow:  getEnvDuration("RATE_WINDOW", time.Minute),
			CORSOrigins: parseCORSOrigins(os.Getenv("CORS_ORIGINS")),
			SwaggerUser: getEnv("SWAGGER_USER", ""),
			SwaggerPass: getEnv("SWAGGER_PASS", ""),
		},
		Cache: CacheConfig{
			Size: getEnvInt("CACHE_SIZE", 1000),
			TTL:  getEnvDuration("CACHE_TTL", 5*time.Minute),
		},
		Auth: AuthConfig{
			Enabled:        getEnvBool("AUTH_ENABLED", false),
			APIKeys:        parseAPIKeys(os.Getenv("API_KEYS")),
			APIKeyHashes:   parseList(os.Getenv("API_KEY_HASHES")),
			JWTSecretKey:   os.Getenv("JWT_SECRET_KEY"),
			JWTIssuer:      getEnv("JWT_ISSUER", "farepath-service"),
			AccessTokenTTL: getEnvDuration("JWT_ACCESS_TOKEN_TTL", time.Hour),
		},
		Database: DatabaseConfig{
			URI:                            getEnv("MONGODB_URI", "mongodb://localhost:27017"),
			DatabaseName:                   getEnv("MONGODB_DATABASE", "farepath_service"),
			RecordsTTL:                     getEnvDuration("MONGODB_RECORDS_TTL", 30*24*time.Hour),
			MaxPoolSize:                    getEnvInt("MONGODB_MAX_POOL_SIZE", 50),
			ServerSelectionTimeout:         getEnvDuration("MONGODB_SERVER_SELECTION_TIMEOUT", 5*time.Second),
			Enabled:                        getEnvBool("MONGODB_ENABLED", false),
			CircuitBreakerFailureThreshold: getEnvInt("CIRCUIT_BREAKER_FAILURE_THRESHOLD", 5),
			CircuitBreakerSuccessThreshold: getEnvInt("CIRCUIT_BREAKER_SUCCESS_THRESHOLD", 2),
			CircuitBreakerTimeout:          getEnvDuration("CIRCUIT_BREAKER_TIMEOUT", 30*time.Second),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Pretty: getEnvBool("LOG_PRETTY", false),
		},
		Search: SearchConfig{
			Timeout:                    getEnvDuration("SEARCH_TIMEOUT", 10*time.Second),
			MaxNbrCombMsgThreshold:     getEnvInt("SEARCH_MAX_NBR_COMB_MSG_THRESHOLD", 50000),
			MultiPaxShortCktTimeout:    getEnvDuration("SEARCH_MULTI_PAX_SHORT_CKT_TIMEOUT", 3*time.Second),
			ShortCktTimeout:            getEnvDuration("SEARCH_SHORT_CKT_TIMEOUT", 2*time.Second),
			ShortCktShutdownFPFsTime:   getEnvDuration("SEARCH_SHORT_CKT_SHUTDOWN_FPFS_TIME", 8*time.Second),
			ShortCktKeepValidFPsTime:   getEnvDuration("SEARCH_SHORT_CKT_KEEP_VALID_FPS_TIME", 7*time.Second),
			ShortCktCombCount:          getEnvInt("SEARCH_SHORT_CKT_COMB_COUNT", 1000),
			ShortCktStdDevMultiplier:   getEnvFloat("SEARCH_SHORT_CKT_STDDEV_MULTIPLIER", 3),
			PlusUpPushBackMax:          getEnvInt("SEARCH_PLUS_UP_PUSH_BACK_MAX", 100),
			PlusUpPushBackThreshold:    getEnvInt("SEARCH_PLUS_UP_PUSH_BACK_THRESHOLD", 10),
			MaxSearchNextLevelFarePath: getEnvInt("SEARCH_MAX_SEARCH_NEXT_LEVEL_FARE_PATH", -1),
			AbortCheckInterval:         getEnvInt("SEARCH_ABORT_CHECK_INTERVAL", 16),
			MaxFailedFarePaths:         getEnvInt("SEARCH_MAX_FAILED_FARE_PATHS", 0),
		},
	}
}

// minJWTSecretLen is the shortest HS256 secret accepted.
const minJWTSecretLen = 32

// Validate reports every setting the service cannot start with.
func (c Config) Validate() error {
	var errs []error
	if c.Server.RateLimit <= 0 || c.Server.RateWindow <= 0 {
		errs = append(errs, errors.New("RATE_LIMIT and RATE_WINDOW must be positive"))
	}
	if c.Search.Timeout <= 0 {
		errs = append(errs, errors.New("SEARCH_TIMEOUT must be positive"))
	}
	if c.Search.ShortCktCombCount < 0 || c.Search.ShortCktStdDevMultiplier < 0 {
		errs = append(errs, errors.New("search short circuit limits must not be negative"))
	}
	if c.Auth.Enabled && len(c.Auth.APIKeys) == 0 && len(c.Auth.APIKeyHashes) == 0 {
		errs = append(errs, errors.New("AUTH_ENABLED requires API_KEYS or API_KEY_HASHES"))
	}
	if s := c.Auth.JWTSecretKey; s != "" && len(s) < minJWTSecretLen {
		errs = append(errs, fmt.Errorf("JWT_SECRET_KEY must be at least %d bytes", minJWTSecretLen))
	}
	if c.Database.Enabled && c.Database.URI == "" {
		errs = append(errs, errors.New("MONGODB_ENABLED requires MONGODB_URI"))
	}
	return errors.Join(errs...)
}

// env parses the variable key, keeping def when it is unset or does not parse.
func env[T any](key string, def T, parse func(string) (T, error)) T {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	parsed, err := parse(v)
	if err != nil {
		return def
	}
	return parsed
}

func getEnv(key, def string) string {
	return env(key, def, func(v string) (string, error) { return v, nil })
}

func getEnvInt(key string, def int) int { return env(key, def, strconv.Atoi) }

func getEnvBool(key string, def bool) bool { return env(key, def, strconv.ParseBool) }

func getEnvDuration(key string, def time.Duration) time.Duration {
	return env(key, def, time.ParseDuration)
}

func getEnvFloat(key string, def float64) float64 {
	return env(key, def, func(v string) (float64, error) { return strconv.ParseFloat(v, 64) })
}

// parseList splits a comma separated value, dropping blanks.
func parseList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseAPIKeys(s string) map[string]bool {
	keys := parseList(s)
	if len(keys) == 0 {
		return nil
	}
	set := make(map[string]bool, len(keys))
	for _, k := range keys {
		set[k] = true
	}
	return set
}

// localOrigins are always allowed so a local API explorer can reach the service.
var localOrigins = []string{"http://localhost:3000", "http://127.0.0.1:3000"}

func parseCORSOrigins(s string) []string {
	origins := append([]string(nil), localOrigins...)
	for _, o := range parseList(s) {
		if !slices.Contains(origins, o) {
			origins = append(origins, o)
		}
	}
	return origins
}
