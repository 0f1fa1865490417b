package app

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/agentstation/platemap/pkg/coverage"
	"github.com/agentstation/platemap/pkg/errors"
)

// Config holds the application configuration loaded from config files,
// environment variables and .env files.
type Config struct {
	// Global flags
	Verbose bool
	Quiet   bool
	NoColor bool
	Format  string

	// Config file
	ConfigFile string

	// CatalogPath is the sub-agency catalog file (CSV, JSON, YAML or xlsx).
	CatalogPath string

	// Schemas maps a schema tag (primary, alternative) to the upload file
	// names that carry it. Empty means the built-in names.
	Schemas map[string][]string

	// Logging configuration
	LogLevel  string
	LogFormat string
	LogOutput string
}

// LoadConfig loads configuration from all sources in order of precedence:
// 1. Command-line flags (handled by cobra)
// 2. Environment variables
// 3. .env files
// 4. Config file (./.platemap.yaml or ~/.platemap.yaml)
// 5. Defaults
func LoadConfig() (*Config, error) {
	return LoadConfigFile("")
}

// LoadConfigFile is LoadConfig with an explicit config file, which must
// exist. An empty path searches the standard locations.
func LoadConfigFile(path string) (*Config, error) {
	loadEnvFiles()

	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.SetDefault("log_format", "auto")
	v.SetDefault("log_output", "stderr")

	configFile := path
	if configFile == "" {
		configFile = v.GetString("config")
	}
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		v.SetConfigType("yaml")
		v.SetConfigName(".platemap")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, errors.NewConfigError("config", "reading "+v.ConfigFileUsed(), err)
		}
	}

	return &Config{
		Verbose: v.GetBool("verbose"),
		Quiet:   v.GetBool("quiet"),
		NoColor: v.GetBool("no-color"),
		Format:  v.GetString("format"),

		ConfigFile: v.ConfigFileUsed(),

		CatalogPath: v.GetString("catalog_path"),
		Schemas:     v.GetStringMapStringSlice("schemas"),

		LogLevel:  v.GetString("log_level"),
		LogFormat: v.GetString("log_format"),
		LogOutput: v.GetString("log_output"),
	}, nil
}

// UpdateFromFlags updates config values from parsed command flags. Flags
// only override when set, so config file and env values survive.
func (c *Config) UpdateFromFlags(verbose, quiet, noColor bool, format, logLevel, catalogPath string) {
	c.Verbose = c.Verbose || verbose
	c.Quiet = c.Quiet || quiet
	c.NoColor = c.NoColor || noColor
	if format != "" {
		c.Format = format
	}
	if logLevel != "" {
		c.LogLevel = logLevel
	}
	if catalogPath != "" {
		c.CatalogPath = catalogPath
	}
}

// SchemaFilenames converts the configured schema names for the resolver.
// Unknown schema tags are ignored.
func (c *Config) SchemaFilenames() map[coverage.Schema][]string {
	if len(c.Schemas) == 0 {
		return nil
	}
	out := make(map[coverage.Schema][]string, len(c.Schemas))
	for tag, names := range c.Schemas {
		schema := coverage.ParseSchema(tag)
		if !schema.Valid() {
			continue
		}
		out[schema] = append(out[schema], names...)
	}
	return out
}

// loadEnvFiles loads environment variables from .env files.
// .env.local is loaded first because godotenv never overrides a set variable.
func loadEnvFiles() {
	for _, envFile := range []string{".env.local", ".env"} {
		_ = godotenv.Load(envFile)
	}
}
