package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"NewsDedup/internal/dedup"
	"NewsDedup/internal/domain"
	"NewsDedup/internal/infrastructure/storage"
)

const (
	configPathEnv     = "NEWSDEDUP_CONFIG"
	reportDirEnv      = "NEWSDEDUP_REPORT_DIR"
	databaseDSNEnv    = "DATABASE_DSN"
	databaseURLEnv    = "DB_URL"
	databaseDriverEnv = "DB_DRIVER"
	dbHostEnv         = "DB_HOST"
	dbPortEnv         = "DB_PORT"
	dbNameEnv         = "DB_NAME"
	dbUserEnv         = "DB_USER"
	dbPasswordEnv     = "DB_PASSWORD"
	dbSSLModeEnv      = "DB_SSLMODE"
	telegramTokenEnv  = "TELEGRAM_BOT_TOKEN"
	telegramChatIDEnv = "TELEGRAM_CHAT_ID"
	logLevelEnv       = "LOG_LEVEL"
)

// Config holds every setting resolved at process start.
type Config struct {
	Database      DatabaseConfig     `yaml:"database"`
	Stages        StagesConfig       `yaml:"stages"`
	Reports       ReportsConfig      `yaml:"reports"`
	Notifications NotificationConfig `yaml:"notifications"`
	Logging       LoggingConfig      `yaml:"logging"`
	DryRun        bool               `yaml:"dryRun"`
}

// DatabaseConfig describes the connection and the tables to reconcile.
// DSN wins over the individual connection parts.
type DatabaseConfig struct {
	Driver          string `yaml:"driver"`
	DSN             string `yaml:"dsn"`
	Host            string `yaml:"host"`
	Port            int    `yaml:"port"`
	Name            string `yaml:"name"`
	User            string `yaml:"user"`
	Password        string `yaml:"password"`
	SSLMode         string `yaml:"sslMode"`
	ArticlesTable   string `yaml:"articlesTable"`
	ArchiveTable    string `yaml:"archiveTable"`
	DeleteChunkSize int    `yaml:"deleteChunkSize"`
}

// StagesConfig pins the policy of each resolution stage.
type StagesConfig struct {
	Link        StageConfig `yaml:"link"`
	TitlePortal StageConfig `yaml:"titlePortal"`
}

// StageConfig configures one stage. ArchivePrefilter only applies to the
// link stage.
type StageConfig struct {
	Enabled          bool   `yaml:"enabled"`
	DateMode         string `yaml:"dateMode"`
	NoDateFallback   string `yaml:"noDateFallback"`
	ArchivePrefilter bool   `yaml:"archivePrefilter"`
	ReportFile       string `yaml:"reportFile"`
}

// ReportsConfig says where audit files go.
type ReportsConfig struct {
	Dir             string `yaml:"dir"`
	FindFile        string `yaml:"findFile"`
	FindBeforeClean bool   `yaml:"findBeforeClean"`
}

// NotificationConfig encapsulates outbound channels.
type NotificationConfig struct {
	Telegram TelegramConfig `yaml:"telegram"`
}

// TelegramConfig wires all data required to send messages.
type TelegramConfig struct {
	BotToken string `yaml:"botToken"`
	ChatID   string `yaml:"chatId"`
	APIURL   string `yaml:"apiUrl"`
}

// Enabled reports whether both token and chat are present.
func (t TelegramConfig) Enabled() bool {
	return t.BotToken != "" && t.ChatID != ""
}

// LoggingConfig selects level and handler format ("text" or "json").
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads the YAML file at path (or $NEWSDEDUP_CONFIG when path is
// empty), applies environment overrides and validates the result. Any
// problem is returned as a configuration failure.
func Load(path string) (Config, error) {
	cfg := defaultConfig()

	if path == "" {
		path = os.Getenv(configPathEnv)
	}
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, domain.NewFailure(domain.FailureConfiguration, "read config", err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, domain.NewFailure(domain.FailureConfiguration, "parse config",
				fmt.Errorf("%s: %w", path, err))
		}
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return Config{}, domain.NewFailure(domain.FailureConfiguration, "environment", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, domain.NewFailure(domain.FailureConfiguration, "validate config", err)
	}
	return cfg, nil
}

func (c *Config) applyEnvOverrides() error {
	if v := os.Getenv(databaseDriverEnv); v != "" {
		c.Database.Driver = v
	}
	if v := os.Getenv(databaseDSNEnv); v != "" {
		c.Database.DSN = v
	}
	if v := os.Getenv(databaseURLEnv); v != "" {
		c.Database.DSN = v
	}

	if v := os.Getenv(dbHostEnv); v != "" {
		c.Database.Host = v
	}
	if v := os.Getenv(dbPortEnv); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", dbPortEnv, err)
		}
		c.Database.Port = port
	}
	if v := os.Getenv(dbNameEnv); v != "" {
		c.Database.Name = v
	}
	if v := os.Getenv(dbUserEnv); v != "" {
		c.Database.User = v
	}
	if v := os.Getenv(dbPasswordEnv); v != "" {
		c.Database.Password = v
	}
	if v := os.Getenv(dbSSLModeEnv); v != "" {
		c.Database.SSLMode = v
	}

	if v := os.Getenv(telegramTokenEnv); v != "" {
		c.Notifications.Telegram.BotToken = v
	}
	if v := os.Getenv(telegramChatIDEnv); v != "" {
		c.Notifications.Telegram.ChatID = v
	}

	if v := os.Getenv(logLevelEnv); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv(reportDirEnv); v != "" {
		c.Reports.Dir = v
	}
	return nil
}

// Validate checks every field a run depends on.
func (c Config) Validate() error {
	var errs []error

	switch c.Database.Driver {
	case "postgres", "pgx", "sqlite":
	default:
		errs = append(errs, fmt.Errorf("database.driver: unsupported driver %q", c.Database.Driver))
	}
	if c.ConnectionString() == "" {
		errs = append(errs, errors.New("database: no dsn and no host/name configured"))
	}
	switch {
	case c.Database.ArticlesTable == "":
		errs = append(errs, errors.New("database.articlesTable: required"))
	case !storage.ValidIdentifier(c.Database.ArticlesTable):
		errs = append(errs, fmt.Errorf("database.articlesTable: invalid table name %q", c.Database.ArticlesTable))
	}
	if c.Database.ArchiveTable != "" && !storage.ValidIdentifier(c.Database.ArchiveTable) {
		errs = append(errs, fmt.Errorf("database.archiveTable: invalid table name %q", c.Database.ArchiveTable))
	}
	if c.Database.DeleteChunkSize <= 0 {
		errs = append(errs, fmt.Errorf("database.deleteChunkSize: must be positive, got %d", c.Database.DeleteChunkSize))
	}

	stages := []struct {
		name string
		cfg  StageConfig
	}{{"link", c.Stages.Link}, {"titlePortal", c.Stages.TitlePortal}}
	for _, s := range stages {
		name, st := s.name, s.cfg
		if !st.Enabled {
			continue
		}
		if _, err := dedup.ParseDateMode(st.DateMode); err != nil {
			errs = append(errs, fmt.Errorf("stages.%s.dateMode: %w", name, err))
		}
		if _, err := dedup.ParseFallback(st.NoDateFallback); err != nil {
			errs = append(errs, fmt.Errorf("stages.%s.noDateFallback: %w", name, err))
		}
	}
	if c.Stages.Link.Enabled && c.Stages.Link.ArchivePrefilter && c.Database.ArchiveTable == "" {
		errs = append(errs, errors.New("database.archiveTable: required when stages.link.archivePrefilter is on"))
	}

	switch strings.ToLower(c.Logging.Format) {
	case "", "text", "json":
	default:
		errs = append(errs, fmt.Errorf("logging.format: unknown format %q", c.Logging.Format))
	}

	return errors.Join(errs...)
}

// ConnectionString returns the DSN, building a postgres URL from the parts
// when no DSN is set. For sqlite, Name is the database file.
func (c Config) ConnectionString() string {
	db := c.Database
	if db.DSN != "" {
		return db.DSN
	}
	if db.Driver == "sqlite" {
		return db.Name
	}
	if db.Host == "" || db.Name == "" {
		return ""
	}

	host := db.Host
	if db.Port != 0 {
		host = net.JoinHostPort(db.Host, strconv.Itoa(db.Port))
	}
	u := url.URL{Scheme: "postgres", Host: host, Path: "/" + db.Name}
	if db.User != "" {
		if db.Password != "" {
			u.User = url.UserPassword(db.User, db.Password)
		} else {
			u.User = url.User(db.User)
		}
	}
	if db.SSLMode != "" {
		u.RawQuery = url.Values{"sslmode": {db.SSLMode}}.Encode()
	}
	return u.String()
}

func defaultConfig() Config {
	return Config{
		Database: DatabaseConfig{
			Driver:          "postgres",
			Port:            5432,
			SSLMode:         "prefer",
			ArticlesTable:   "noticias",
			ArchiveTable:    "noticias_excluidas",
			DeleteChunkSize: 1000,
		},
		Stages: StagesConfig{
			Link: StageConfig{
				Enabled:          true,
				DateMode:         string(dedup.KeepNewest),
				NoDateFallback:   string(dedup.KeepFirst),
				ArchivePrefilter: true,
				ReportFile:       "clean_duplicate_links_report.json",
			},
			TitlePortal: StageConfig{
				Enabled:        true,
				DateMode:       string(dedup.KeepOldest),
				NoDateFallback: string(dedup.KeepFirst),
				ReportFile:     "clean_extra.json",
			},
		},
		Reports: ReportsConfig{
			Dir:             ".",
			FindFile:        "duplicate_links_report.json",
			FindBeforeClean: true,
		},
		Logging: LoggingConfig{Level: "info", Format: "text"},
	}
}
