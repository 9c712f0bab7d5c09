package cli

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/pthm/joinplan/internal/planner"
)

const (
	maxWalkDepth = 25
)

// configNames are the file names LoadConfig discovers, in preference order.
var configNames = []string{"joinplan.yaml", "joinplan.yml"}

// Config represents the joinplan configuration from joinplan.yaml.
type Config struct {
	// Schema is the path of the schema YAML file.
	Schema string `mapstructure:"schema" json:"schema"`

	Database   DatabaseConfig   `mapstructure:"database" json:"database"`
	Plan       PlanConfig       `mapstructure:"plan" json:"plan"`
	Introspect IntrospectConfig `mapstructure:"introspect" json:"introspect"`
	Doctor     DoctorConfig     `mapstructure:"doctor" json:"doctor"`
	Log        LogConfig        `mapstructure:"log" json:"log"`
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	URL      string `mapstructure:"url" json:"url,omitempty"`
	Host     string `mapstructure:"host" json:"host,omitempty"`
	Port     int    `mapstructure:"port" json:"port"`
	Name     string `mapstructure:"name" json:"name,omitempty"`
	User     string `mapstructure:"user" json:"user,omitempty"`
	Password string `mapstructure:"password" json:"password,omitempty"`
	SSLMode  string `mapstructure:"sslmode" json:"sslmode,omitempty"`
	// Driver is the database/sql driver name: "postgres" (lib/pq) or "pgx".
	Driver string `mapstructure:"driver" json:"driver"`
}

// PlanConfig holds plan command settings.
type PlanConfig struct {
	Mode   string `mapstructure:"mode" json:"mode"`
	Format string `mapstructure:"format" json:"format"`
}

// IntrospectConfig holds introspect command settings.
type IntrospectConfig struct {
	Schemas []string `mapstructure:"schemas" json:"schemas"`
	Output  string   `mapstructure:"output" json:"output,omitempty"`
}

// DoctorConfig holds doctor command settings.
type DoctorConfig struct {
	Verbose bool `mapstructure:"verbose" json:"verbose"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level  string `mapstructure:"level" json:"level"`
	Format string `mapstructure:"format" json:"format"`
}

// LoadConfig discovers and loads configuration with proper precedence:
// flags > env > config file > defaults.
//
// Returns the loaded config, the path to the config file (empty if none found),
// and any error encountered.
func LoadConfig(explicitConfigPath string) (*Config, string, error) {
	v := viper.New()

	setDefaults(v)

	v.SetEnvPrefix("JOINPLAN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	configPath, err := findConfigFile(explicitConfigPath)
	if err != nil {
		return nil, "", err
	}

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, configPath, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, configPath, fmt.Errorf("unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, configPath, err
	}

	return &cfg, configPath, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("schema", "schema.yaml")

	v.SetDefault("database.url", "")
	v.SetDefault("database.host", "")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "")
	v.SetDefault("database.user", "")
	v.SetDefault("database.password", "")
	v.SetDefault("database.sslmode", "prefer")
	v.SetDefault("database.driver", "postgres")

	v.SetDefault("plan.mode", "if_preferable")
	v.SetDefault("plan.format", "text")

	v.SetDefault("introspect.schemas", []string{"public"})
	v.SetDefault("introspect.output", "")

	v.SetDefault("doctor.verbose", false)

	v.SetDefault("log.level", "warn")
	v.SetDefault("log.format", "console")
}

// Validate checks the enumerated settings.
func (c *Config) Validate() error {
	if _, err := planner.ParseJoinMode(c.Plan.Mode); err != nil {
		return fmt.Errorf("plan.mode: %w", err)
	}
	switch c.Plan.Format {
	case "text", "yaml":
	default:
		return fmt.Errorf("plan.format: unknown format %q", c.Plan.Format)
	}
	switch c.Database.Driver {
	case "postgres", "pgx":
	default:
		return fmt.Errorf("database.driver: unknown driver %q", c.Database.Driver)
	}
	switch c.Log.Format {
	case "console", "json":
	default:
		return fmt.Errorf("log.format: unknown format %q", c.Log.Format)
	}
	return nil
}

// JoinMode returns the parsed plan.mode.
func (c *Config) JoinMode() planner.JoinMode {
	m, _ := planner.ParseJoinMode(c.Plan.Mode)
	return m
}

// findConfigFile finds the config file to use.
// If explicitPath is provided, it validates the file exists.
// Otherwise, it walks up from cwd looking for joinplan.yaml or joinplan.yml,
// stopping at a .git directory or after maxWalkDepth levels.
func findConfigFile(explicitPath string) (string, error) {
	if explicitPath != "" {
		if _, err := os.Stat(explicitPath); err != nil {
			return "", fmt.Errorf("config file not found: %s", explicitPath)
		}
		return explicitPath, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getting cwd: %w", err)
	}

	dir := cwd
	for i := 0; i < maxWalkDepth; i++ {
		for _, name := range configNames {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err == nil {
				return path, nil
			}
		}

		if _, err := os.Stat(filepath.Join(dir, ".git")); err == nil {
			break
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", nil
}

// DSN returns the database connection string.
// If database.url is set, it's returned directly.
// Otherwise, builds a DSN from discrete fields.
func (c *Config) DSN() (string, error) {
	db := c.Database

	if db.URL != "" {
		return db.URL, nil
	}

	if db.Host == "" {
		return "", fmt.Errorf("database.host is required when database.url is not set")
	}
	if db.Name == "" {
		return "", fmt.Errorf("database.name is required when database.url is not set")
	}
	if db.User == "" {
		return "", fmt.Errorf("database.user is required when database.url is not set")
	}

	u := &url.URL{
		Scheme: "postgres",
		Host:   fmt.Sprintf("%s:%d", db.Host, db.Port),
		Path:   "/" + db.Name,
	}

	if db.Password != "" {
		u.User = url.UserPassword(db.User, db.Password)
	} else {
		u.User = url.User(db.User)
	}

	if db.SSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.SSLMode)
		u.RawQuery = q.Encode()
	}

	return u.String(), nil
}

// HasDatabase reports whether any database connection setting is present.
func (c *Config) HasDatabase() bool {
	return c.Database.URL != "" || c.Database.Host != ""
}

// Redacted returns a copy of c with the database password masked, for
// printing.
func (c *Config) Redacted() Config {
	out := *c
	out.Introspect.Schemas = append([]string(nil), c.Introspect.Schemas...)
	if out.Database.Password != "" {
		out.Database.Password = "********"
	}
	if u, err := url.Parse(out.Database.URL); err == nil && u.User != nil {
		if _, set := u.User.Password(); set {
			u.User = url.UserPassword(u.User.Username(), "********")
			out.Database.URL = u.String()
		}
	}
	return out
}
