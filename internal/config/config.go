// Package config loads and validates the application configuration
// from defaults, command-line flags and environment variables.
package config

import (
	"flag"
	"log"
	"os"
	"time"

	env "github.com/caarlos0/env/v6"
	validator "github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config holds the runtime settings of the service.
type Config struct {
	RunAddr               string        `env:"SERVER_ADDRESS" validate:"hostname_port"`
	LogLevel              string        `env:"LOG_LEVEL" validate:"loglevel"`
	DBFileName            string        `env:"FILE_STORAGE_PATH" validate:"filepath"`
	DatabaseDSN           string        `env:"DATABASE_DSN"`
	DBConnectionTimeout   time.Duration `env:"DB_CONNECTION_TIMEOUT"`
	MigrationsDir         string        `env:"MIGRATIONS_DIR"`
	AuthCookieName        string        `env:"AUTH_COOKIE_NAME" validate:"required"`
	TokenSigningSecretKey string        `env:"TOKEN_SIGNING_SECRET_KEY" validate:"required,base64url"`
	TokenTTL              time.Duration `env:"TOKEN_TTL"`
}

var defaultConfig = Config{
	RunAddr:               ":8080",
	LogLevel:              "info",
	DBFileName:            "",
	DatabaseDSN:           "",
	DBConnectionTimeout:   10 * time.Second,
	MigrationsDir:         "cmd/booksearch/migrations",
	AuthCookieName:        "auth_token",
	TokenSigningSecretKey: "c3VwZXJzZWNyZXRzaGhoaGho",
	TokenTTL:              2 * time.Hour,
}

func applyDefaults(values *Config, defaults Config) {
	*values = defaults
}

func validateFilePath(fieldLevel validator.FieldLevel) bool {
	path := fieldLevel.Field().String()
	if path == "" {
		return true
	}
	_, err := os.Stat(path)

	return err == nil || os.IsNotExist(err)
}

func validateLogLevel(fieldLevel validator.FieldLevel) bool {
	value := fieldLevel.Field().String()

	allowedLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
		"fatal": true,
	}

	return allowedLogLevels[value]
}

func (c *Config) validate() error {
	validate := validator.New()

	err := validate.RegisterValidation("loglevel", validateLogLevel)
	if err != nil {
		return err
	}

	err = validate.RegisterValidation("filepath", validateFilePath)
	if err != nil {
		return err
	}

	return validate.Struct(c)
}

// InitOption customizes the behavior of New.
type InitOption func(*initOptions)

type initOptions struct {
	disableFlagsParsing bool
}

// WithDisableFlagsParsing disables command-line flag parsing.
// It is intended for tests, where the flag set is owned by the test binary.
func WithDisableFlagsParsing(disableFlagsParsing bool) InitOption {
	return func(options *initOptions) {
		options.disableFlagsParsing = disableFlagsParsing
	}
}

// New builds a Config by layering defaults, command-line flags and
// environment variables (the latter taking precedence), and validates
// the result.
func New(optionsProto ...InitOption) (*Config, error) {
	options := &initOptions{
		disableFlagsParsing: false,
	}
	for _, protoOption := range optionsProto {
		protoOption(options)
	}

	if err := godotenv.Load(); err != nil {
		log.Printf("Unable to load .env file: %v", err)
	}

	values := &Config{}
	applyDefaults(values, defaultConfig)

	if !options.disableFlagsParsing {
		flag.StringVar(&values.RunAddr, "a", values.RunAddr, "address and port to run server")
		flag.StringVar(&values.LogLevel, "l", values.LogLevel, "logger level")
		flag.StringVar(&values.DBFileName, "f", values.DBFileName, "JSON file name with database")
		flag.StringVar(&values.DatabaseDSN, "d", values.DatabaseDSN, "A string with the database connection details")
		flag.StringVar(&values.MigrationsDir, "m", values.MigrationsDir, "directory with goose migrations")
		flag.Parse()
	}

	valuesFromEnv := Config{}
	if err := env.Parse(&valuesFromEnv); err != nil {
		return nil, err
	}

	if valuesFromEnv.RunAddr != "" {
		values.RunAddr = valuesFromEnv.RunAddr
	}

	if valuesFromEnv.LogLevel != "" {
		values.LogLevel = valuesFromEnv.LogLevel
	}

	if valuesFromEnv.DBFileName != "" {
		values.DBFileName = valuesFromEnv.DBFileName
	}

	if valuesFromEnv.DatabaseDSN != "" {
		values.DatabaseDSN = valuesFromEnv.DatabaseDSN
	}

	if valuesFromEnv.DBConnectionTimeout != 0 {
		values.DBConnectionTimeout = valuesFromEnv.DBConnectionTimeout
	}

	if valuesFromEnv.MigrationsDir != "" {
		values.MigrationsDir = valuesFromEnv.MigrationsDir
	}

	if valuesFromEnv.AuthCookieName != "" {
		values.AuthCookieName = valuesFromEnv.AuthCookieName
	}

	if valuesFromEnv.TokenSigningSecretKey != "" {
		values.TokenSigningSecretKey = valuesFromEnv.TokenSigningSecretKey
	}

	if valuesFromEnv.TokenTTL != 0 {
		values.TokenTTL = valuesFromEnv.TokenTTL
	}

	if err := values.validate(); err != nil {
		return nil, err
	}

	return values, nil
}
