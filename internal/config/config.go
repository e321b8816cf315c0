package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Supported values of database.driver.
const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

type Config struct {
	HTTPServer struct {
		Port           int `koanf:"port"           validate:"min=1,max=65535"`
		MaxHeaderBytes int `koanf:"maxheaderbytes" validate:"gte=0"`
		Timeout        struct {
			Read       time.Duration `koanf:"read"       validate:"gt=0"`
			Write      time.Duration `koanf:"write"      validate:"gt=0"`
			Idle       time.Duration `koanf:"idle"       validate:"gt=0"`
			ReadHeader time.Duration `koanf:"readheader" validate:"gt=0"`
		} `koanf:"timeout"`
	} `koanf:"server"`

	Database struct {
		Driver  string        `koanf:"driver"  validate:"oneof=mongo postgres memory"`
		URL     string        `koanf:"url"     validate:"required_unless=Driver memory"`
		Name    string        `koanf:"name"    validate:"required_if=Driver mongo"`
		Timeout time.Duration `koanf:"timeout" validate:"gt=0"`
	} `koanf:"database"`

	Log struct {
		Level string `koanf:"level" validate:"oneof=debug info warn error"`
	} `koanf:"log"`

	Metrics struct {
		Enabled bool   `koanf:"enabled"`
		Token   string `koanf:"token"`
	} `koanf:"metrics"`

	PProf struct {
		Enabled bool   `koanf:"enabled"`
		Addr    string `koanf:"addr" validate:"required_if=Enabled true"`
	} `koanf:"pprof"`

	Shutdown struct {
		Timeout time.Duration `koanf:"timeout" validate:"gt=0"`
	} `koanf:"shutdown"`
}

func (c Config) String() string {
	var b strings.Builder

	b.WriteString("\n--- Server Configuration ---\n")
	b.WriteString(fmt.Sprintf("  server.port: %d\n", c.HTTPServer.Port))
	b.WriteString(fmt.Sprintf("  server.maxheaderbytes: %d\n", c.HTTPServer.MaxHeaderBytes))
	b.WriteString(fmt.Sprintf("  server.timeout.read: %v\n", c.HTTPServer.Timeout.Read))
	b.WriteString(fmt.Sprintf("  server.timeout.write: %v\n", c.HTTPServer.Timeout.Write))
	b.WriteString(fmt.Sprintf("  server.timeout.idle: %v\n", c.HTTPServer.Timeout.Idle))
	b.WriteString(fmt.Sprintf("  server.timeout.readheader: %v\n", c.HTTPServer.Timeout.ReadHeader))

	b.WriteString("\n--- Database Configuration ---\n")
	b.WriteString(fmt.Sprintf("  database.driver: %s\n", c.Database.Driver))
	b.WriteString(fmt.Sprintf("  database.url: %s\n", maskURL(c.Database.URL)))
	b.WriteString(fmt.Sprintf("  database.name: %s\n", c.Database.Name))
	b.WriteString(fmt.Sprintf("  database.timeout: %s\n", c.Database.Timeout))

	b.WriteString("\n--- Observability & Logging ---\n")
	b.WriteString(fmt.Sprintf("  log.level: %s\n", c.Log.Level))
	b.WriteString(fmt.Sprintf("  metrics.enabled: %t\n", c.Metrics.Enabled))
	b.WriteString(fmt.Sprintf("  metrics.token: %s\n", maskSecret(c.Metrics.Token)))
	b.WriteString(fmt.Sprintf("  pprof.enabled: %t\n", c.PProf.Enabled))
	b.WriteString(fmt.Sprintf("  pprof.addr: %s\n", c.PProf.Addr))

	b.WriteString("\n--- Application Behavior ---\n")
	b.WriteString(fmt.Sprintf("  shutdown.timeout: %s\n", c.Shutdown.Timeout))

	return b.String()
}

func maskURL(url string) string {
	if url == "" {
		return "<not configured>"
	}
	// Mask the URL by replacing the username and password with "****"
	parts := strings.Split(url, "@")
	if len(parts) == 2 {
		scheme := ""
		if i := strings.Index(parts[0], "://"); i >= 0 {
			scheme = parts[0][:i+3]
		}
		return scheme + "****@" + parts[1]
	}
	return "****"
}

func maskSecret(s string) string {
	if s == "" {
		return "<not configured>"
	}
	return "****"
}

const (
	envPrefix      = "catalog_svc_"
	defaultEnvFile = ".env"
	configFile     = "config.yaml"

	// legacyMongoURIEnv overrides config.yaml and is overridden by CATALOG_SVC_DATABASE_URL.
	legacyMongoURIEnv = "MONGODB_URI"
)

var defaults = map[string]any{
	"server.port":               8080,
	"server.maxheaderbytes":     1 << 20,
	"server.timeout.read":       "5s",
	"server.timeout.write":      "10s",
	"server.timeout.idle":       "60s",
	"server.timeout.readheader": "2s",
	"database.driver":           DriverMongo,
	"database.name":             "ecommerce",
	"database.timeout":          "10s",
	"log.level":                 "info",
	"metrics.enabled":           false,
	"pprof.enabled":             false,
	"pprof.addr":                "localhost:6060",
	"shutdown.timeout":          "15s",
}

// Load reads the configuration from config.yaml, .env and environment variables
func Load() (*Config, error) {
	return LoadFrom(configFile, defaultEnvFile)
}

// LoadFrom is Load with explicit file locations. Missing files are skipped.
func LoadFrom(yamlFile, envFile string) (*Config, error) {
	// Create a new Koanf instance
	var k = koanf.New(".")

	// 0. Built-in defaults, the lowest priority
	if err := k.Load(confmap.Provider(defaults, "."), nil); err != nil {
		return nil, fmt.Errorf("error loading defaults: %w", err)
	}

	// 1. Load configuration from yaml file
	if err := k.Load(file.Provider(yamlFile), yaml.Parser()); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			log.Printf("WARN: error loading YAML config: %v", err)
		}
	}

	// 2. Read the .env file; its values are applied in steps 3 and 4
	envFileMap, err := godotenv.Read(envFile)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("WARN: error reading .env file: %v", err)
	}

	// 3. The legacy connection string variable overrides the yaml file
	// but not an explicit CATALOG_SVC_DATABASE_URL
	uri := os.Getenv(legacyMongoURIEnv)
	if uri == "" {
		uri = envFileMap[legacyMongoURIEnv]
	}
	if uri != "" {
		if err := k.Set("database.url", uri); err != nil {
			return nil, fmt.Errorf("error applying %s: %w", legacyMongoURIEnv, err)
		}
	}

	// 4. Load prefixed variables from the .env file
	envMap := make(map[string]any)
	for key, value := range envFileMap {
		if !strings.HasPrefix(strings.ToLower(key), envPrefix) {
			continue
		}
		envMap[keyTransformer(key)] = value
	}
	if err := k.Load(confmap.Provider(envMap, "."), nil); err != nil {
		log.Printf("WARN: error loading .env config: %v", err)
	}

	// 5. Load environment variables from the system, the highest priority
	if err := k.Load(env.Provider(strings.ToUpper(envPrefix), ".", keyTransformer), nil); err != nil {
		log.Printf("WARN: error loading env vars: %v", err)
	}

	var cfg Config
	// 6. Unmarshal the configuration into the Config struct
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	// 7. Validate the configuration
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// validateConfig checks if the configuration values are valid
func validateConfig(cfg Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			fields := make([]string, 0, len(validationErrors))
			for _, fieldErr := range validationErrors {
				fields = append(fields, fmt.Sprintf("%s failed on rule: %s", fieldErr.Namespace(), fieldErr.Tag()))
			}
			return fmt.Errorf("invalid configuration: %s", strings.Join(fields, "; "))
		}
		return fmt.Errorf("invalid configuration: %w", err)
	}

	switch cfg.Database.Driver {
	case DriverMongo:
		if !isValidMongoURL(cfg.Database.URL) {
			return fmt.Errorf("database URL must start with 'mongodb://' or 'mongodb+srv://': %s", maskURL(cfg.Database.URL))
		}
	case DriverPostgres:
		if !isValidPostgresURL(cfg.Database.URL) {
			return fmt.Errorf("database URL must start with 'postgres://': %s", maskURL(cfg.Database.URL))
		}
	}
	return nil
}

// isValidMongoURL checks if the provided URL is a MongoDB connection string
func isValidMongoURL(url string) bool {
	return strings.HasPrefix(url, "mongodb://") ||
		strings.HasPrefix(url, "mongodb+srv://")
}

// isValidPostgresURL checks if the provided URL is a valid PostgreSQL URL
func isValidPostgresURL(url string) bool {
	return strings.HasPrefix(url, "postgres://") ||
		strings.HasPrefix(url, "postgresql://")
}

// keyTransformer transforms environment variable keys to match the expected format
func keyTransformer(key string) string {
	key = strings.ToLower(key)
	key = strings.TrimPrefix(key, envPrefix)
	return strings.ReplaceAll(key, "_", ".")
}
