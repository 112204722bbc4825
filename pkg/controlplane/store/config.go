package store

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// DatabaseType selects the catalog backend.
type DatabaseType string

const (
	// DatabaseTypeSQLite is the single-node default.
	DatabaseTypeSQLite DatabaseType = "sqlite"

	// DatabaseTypePostgres lets several tagkeep instances share a catalog.
	DatabaseTypePostgres DatabaseType = "postgres"
)

// memoryPath opens a private in-memory SQLite database.
const memoryPath = ":memory:"

// SQLiteConfig locates the SQLite file.
type SQLiteConfig struct {
	// Path defaults to <config dir>/tagkeep/tagkeep.db.
	Path string `mapstructure:"path" yaml:"path"`
}

// PostgresConfig holds the PostgreSQL connection settings.
type PostgresConfig struct {
	Host         string `mapstructure:"host" yaml:"host"`
	Port         int    `mapstructure:"port" yaml:"port"`
	Database     string `mapstructure:"database" yaml:"database"`
	User         string `mapstructure:"user" yaml:"user"`
	Password     string `mapstructure:"password" yaml:"password,omitempty"`
	SSLMode      string `mapstructure:"sslmode" yaml:"sslmode"`
	SSLRootCert  string `mapstructure:"sslrootcert" yaml:"sslrootcert,omitempty"`
	MaxOpenConns int    `mapstructure:"max_open_conns" yaml:"max_open_conns"`
	MaxIdleConns int    `mapstructure:"max_idle_conns" yaml:"max_idle_conns"`
}

// DSN renders the keyword/value connection string understood by pgx.
func (c *PostgresConfig) DSN() string {
	parts := []string{
		"host=" + c.Host,
		fmt.Sprintf("port=%d", c.Port),
		"user=" + c.User,
		"password=" + c.Password,
		"dbname=" + c.Database,
	}
	if c.SSLMode != "" {
		parts = append(parts, "sslmode="+c.SSLMode)
	}
	if c.SSLRootCert != "" {
		parts = append(parts, "sslrootcert="+c.SSLRootCert)
	}
	return strings.Join(parts, " ")
}

// Config selects and configures the catalog database.
type Config struct {
	Type     DatabaseType   `mapstructure:"type" yaml:"type"`
	SQLite   SQLiteConfig   `mapstructure:"sqlite" yaml:"sqlite"`
	Postgres PostgresConfig `mapstructure:"postgres" yaml:"postgres"`
}

// ApplyDefaults fills zero values for the selected backend only.
func (c *Config) ApplyDefaults() {
	if c.Type == "" {
		c.Type = DatabaseTypeSQLite
	}

	switch c.Type {
	case DatabaseTypeSQLite:
		if c.SQLite.Path == "" {
			c.SQLite.Path = filepath.Join(defaultDataDir(), "tagkeep", "tagkeep.db")
		}
	case DatabaseTypePostgres:
		pg := &c.Postgres
		if pg.Port == 0 {
			pg.Port = 5432
		}
		if pg.SSLMode == "" {
			pg.SSLMode = "disable"
		}
		if pg.MaxOpenConns == 0 {
			pg.MaxOpenConns = 25
		}
		if pg.MaxIdleConns == 0 {
			pg.MaxIdleConns = 5
		}
	}
}

// defaultDataDir is %APPDATA% on Windows, else $XDG_CONFIG_HOME or ~/.config.
func defaultDataDir() string {
	envVar, fallback := "XDG_CONFIG_HOME", ".config"
	if runtime.GOOS == "windows" {
		envVar, fallback = "APPDATA", filepath.Join("AppData", "Roaming")
	}
	if dir := os.Getenv(envVar); dir != "" {
		return dir
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, fallback)
}

// Validate reports the first missing setting of the selected backend.
func (c *Config) Validate() error {
	switch c.Type {
	case DatabaseTypeSQLite:
		if c.SQLite.Path == "" {
			return fmt.Errorf("sqlite path is required")
		}
		return nil
	case DatabaseTypePostgres:
		required := []struct{ name, value string }{
			{"host", c.Postgres.Host},
			{"database", c.Postgres.Database},
			{"user", c.Postgres.User},
		}
		for _, r := range required {
			if r.value == "" {
				return fmt.Errorf("postgres %s is required", r.name)
			}
		}
		return nil
	default:
		return fmt.Errorf("unsupported database type: %s", c.Type)
	}
}
