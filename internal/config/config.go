package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	EnvClientEmail   = "GOOGLE_CLIENT_EMAIL"
	EnvPrivateKey    = "GOOGLE_PRIVATE_KEY"
	EnvSpreadsheetID = "SPREADSHEET_ID"
)

var DefaultAllowedOrigins = []string{
	"http://localhost:3000",
	"http://localhost:5173",
	"https://app.chivisclothes.com",
}

var DefaultSheetColumns = []string{
	"timestamp",
	"compraPreferencia",
	"ciudad",
	"edad",
	"ocupacion",
	"estilo",
	"experiencia",
	"recomendacion",
	"sugerencia",
	"aceptaTerminos",
}

type Config struct {
	// Sink credentials. They may be empty at startup; the relay rejects
	// submissions until all three are present.
	ClientEmail   string
	PrivateKey    string
	SpreadsheetID string

	SheetRange     string
	SheetColumns   []string
	SinkTimeout    time.Duration
	AllowedOrigins []string
	Port           string
	StaticDir      string
	LogLevel       string
	Environment    string
	RelayBaseURL   string
}

// LoadDotEnv loads variables from the given files (or .env) without
// overriding variables that are already set. A missing file is not an error.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	var existing []string
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			existing = append(existing, f)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	return godotenv.Load(existing...)
}

func LoadConfig() (*Config, error) {
	port := os.Getenv("PORT")
	if port == "" {
		port = "3000"
	}
	if _, err := strconv.Atoi(port); err != nil {
		return nil, errors.New("invalid PORT env variable")
	}

	sheetRange := os.Getenv("SHEET_RANGE")
	if sheetRange == "" {
		sheetRange = "Respuestas!A:L"
	}

	sheetColumns := DefaultSheetColumns
	if sc := os.Getenv("SHEET_COLUMNS"); sc != "" {
		sheetColumns = SplitList(sc)
		if len(sheetColumns) == 0 {
			return nil, errors.New("SHEET_COLUMNS must name at least one column")
		}
	}

	allowedOrigins := DefaultAllowedOrigins
	if ao := SplitList(os.Getenv("ALLOWED_ORIGINS")); len(ao) > 0 {
		allowedOrigins = ao
	}

	sinkTimeout := 30 * time.Second
	if st := os.Getenv("SINK_TIMEOUT"); st != "" {
		parsed, err := time.ParseDuration(st)
		if err != nil {
			return nil, errors.New("invalid SINK_TIMEOUT env variable")
		}
		sinkTimeout = parsed
	}

	staticDir := os.Getenv("STATIC_DIR")
	if staticDir == "" {
		staticDir = "dist"
	}

	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}

	environment := os.Getenv("ENVIRONMENT")
	if environment == "" {
		environment = "development"
	}

	relayBaseURL := os.Getenv("RELAY_BASE_URL")
	if relayBaseURL == "" {
		relayBaseURL = "http://localhost:" + port
	}

	return &Config{
		ClientEmail:    strings.TrimSpace(os.Getenv(EnvClientEmail)),
		PrivateKey:     UnescapePrivateKey(os.Getenv(EnvPrivateKey)),
		SpreadsheetID:  strings.TrimSpace(os.Getenv(EnvSpreadsheetID)),
		SheetRange:     sheetRange,
		SheetColumns:   sheetColumns,
		SinkTimeout:    sinkTimeout,
		AllowedOrigins: allowedOrigins,
		Port:           port,
		StaticDir:      staticDir,
		LogLevel:       logLevel,
		Environment:    environment,
		RelayBaseURL:   strings.TrimRight(relayBaseURL, "/"),
	}, nil
}

// MissingSecret returns the env name of the first absent sink secret, or "".
func (c *Config) MissingSecret() string {
	switch {
	case c.ClientEmail == "":
		return EnvClientEmail
	case c.PrivateKey == "":
		return EnvPrivateKey
	case c.SpreadsheetID == "":
		return EnvSpreadsheetID
	}
	return ""
}

// UnescapePrivateKey turns literal "\n" sequences into newlines, which is
// how PEM keys survive single-line env files.
func UnescapePrivateKey(key string) string {
	return strings.ReplaceAll(key, `\n`, "\n")
}

// SplitList splits a comma separated value, trimming blanks.
func SplitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
