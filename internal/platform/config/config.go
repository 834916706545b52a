// Package config loads ipguard settings from a YAML file and IPGUARD_*
// environment overrides, remembering where each value came from.
package config

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"ipguard/pkg/platform/sentinel"
	"ipguard/pkg/validation"
)

// DefaultPath is used when IPGUARD_CONFIG is unset.
const DefaultPath = "config.yml"

// Storage backend identifiers.
const (
	StorageFile     = "file"
	StorageSQLite   = "sqlite"
	StoragePostgres = "postgres"
	StorageRedis    = "redis"
	StorageMemory   = "memory"
)

// StorageTypes lists every accepted storage.type value.
var StorageTypes = []string{StorageFile, StorageSQLite, StoragePostgres, StorageRedis, StorageMemory}

// Error is a fatal configuration problem detected at startup.
type Error struct {
	Field  string
	Reason string
}

func (e *Error) Error() string {
	if e.Field == "" {
		return "invalid configuration: " + e.Reason
	}
	return fmt.Sprintf("invalid configuration: %s: %s", e.Field, e.Reason)
}

func (e *Error) Is(target error) bool { return target == sentinel.ErrInvalidInput }

type Config struct {
	Environment   string              `yaml:"environment"`
	LogLevel      string              `yaml:"log_level" validate:"oneof=debug info warn error"`
	Server        ServerConfig        `yaml:"server"`
	Admin         AdminConfig         `yaml:"admin"`
	Runtime       RuntimeConfig       `yaml:"runtime"`
	Policy        PolicyConfig        `yaml:"policy"`
	Storage       StorageConfig       `yaml:"storage"`
	Approval      ApprovalConfig      `yaml:"approval"`
	Notifications NotificationsConfig `yaml:"notifications"`
	Messages      MessagesConfig      `yaml:"messages"`

	sources map[string]string
	path    string
}

type ServerConfig struct {
	Addr            string        `yaml:"addr" validate:"required"`
	PublicURL       string        `yaml:"public_url" validate:"omitempty,url"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type AdminConfig struct {
	// Token is the X-Admin-Token value or its bcrypt hash. Empty disables
	// the admin routes.
	Token string `yaml:"token"`
}

// RuntimeConfig authenticates the hosting runtime on the session intake
// routes.
type RuntimeConfig struct {
	// Token is the X-Runtime-Token value or its bcrypt hash. Empty disables
	// session intake.
	Token string `yaml:"token"`
}

type PolicyConfig struct {
	Enabled            bool          `yaml:"enabled"`
	Interval           time.Duration `yaml:"interval"`
	JoinCheckDelay     time.Duration `yaml:"join_check_delay"`
	CheckElevated      bool          `yaml:"check_elevated"`
	CheckSensitiveMode bool          `yaml:"check_sensitive_mode"`
	SensitiveMode      string        `yaml:"sensitive_mode"`
	Permissions        []string      `yaml:"permissions"`
	Workers            int           `yaml:"workers" validate:"gte=0"`
}

type StorageConfig struct {
	Type     string         `yaml:"type"`
	File     FileConfig     `yaml:"file"`
	SQLite   SQLiteConfig   `yaml:"sqlite"`
	Postgres PostgresConfig `yaml:"postgres"`
	Redis    RedisConfig    `yaml:"redis"`
}

type FileConfig struct {
	Path string `yaml:"path"`
}

type SQLiteConfig struct {
	Path string `yaml:"path"`
}

type PostgresConfig struct {
	URL             string        `yaml:"url"`
	Table           string        `yaml:"table"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
}

type RedisConfig struct {
	URL          string        `yaml:"url"`
	Key          string        `yaml:"key"`
	PoolSize     int           `yaml:"pool_size"`
	MinIdleConns int           `yaml:"min_idle_conns"`
	DialTimeout  time.Duration `yaml:"dial_timeout"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

type ApprovalConfig struct {
	ButtonEnabled   bool          `yaml:"button_enabled"`
	ButtonLabel     string        `yaml:"button_label"`
	TokenTTL        time.Duration `yaml:"token_ttl"`
	CleanupInterval time.Duration `yaml:"cleanup_interval"`

	// SigningKey signs approval links; empty disables link rendering.
	SigningKey string `yaml:"signing_key"`
}

type NotificationsConfig struct {
	SendVerified bool          `yaml:"send_verified"`
	Log          bool          `yaml:"log"`
	BufferSize   int           `yaml:"buffer_size"`
	Webhook      WebhookConfig `yaml:"webhook"`
	Kafka        KafkaConfig   `yaml:"kafka"`
}

type WebhookConfig struct {
	URL              string        `yaml:"url" validate:"omitempty,url"`
	Timeout          time.Duration `yaml:"timeout"`
	FailureThreshold int           `yaml:"failure_threshold"`
	Cooldown         time.Duration `yaml:"cooldown"`
}

type KafkaConfig struct {
	Brokers string `yaml:"brokers"`
	Topic   string `yaml:"topic"`
	Acks    string `yaml:"acks" validate:"omitempty,oneof=0 1 all"`
}

type MessagesConfig struct {
	// File optionally points at a YAML file of message templates that is
	// watched and reloaded on change.
	File       string `yaml:"file"`
	TimeZone   string `yaml:"time_zone"`
	TimeLayout string `yaml:"time_layout"`
}

// Default returns the configuration used when no file or env var is present.
func Default() *Config {
	return &Config{
		Environment: "local",
		LogLevel:    "info",
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    10 * time.Second,
			ShutdownTimeout: 15 * time.Second,
		},
		Policy: PolicyConfig{
			Enabled:            true,
			Interval:           10 * time.Second,
			JoinCheckDelay:     time.Second,
			CheckElevated:      true,
			CheckSensitiveMode: true,
			SensitiveMode:      "creative",
			Workers:            8,
		},
		Storage: StorageConfig{
			Type:   StorageFile,
			File:   FileConfig{Path: "data/trusted.yml"},
			SQLite: SQLiteConfig{Path: "data/trusted.db"},
			Postgres: PostgresConfig{
				Table:           "trusted_addresses",
				MaxOpenConns:    10,
				MaxIdleConns:    2,
				ConnMaxLifetime: 30 * time.Minute,
			},
			Redis: RedisConfig{
				Key:          "ipguard:trusted",
				PoolSize:     10,
				MinIdleConns: 1,
				DialTimeout:  5 * time.Second,
				ReadTimeout:  3 * time.Second,
				WriteTimeout: 3 * time.Second,
			},
		},
		Approval: ApprovalConfig{
			ButtonEnabled:   true,
			ButtonLabel:     "Add IP",
			TokenTTL:        24 * time.Hour,
			CleanupInterval: 5 * time.Minute,
		},
		Notifications: NotificationsConfig{
			SendVerified: true,
			Log:          true,
			BufferSize:   256,
			Webhook: WebhookConfig{
				Timeout:          5 * time.Second,
				FailureThreshold: 5,
				Cooldown:         30 * time.Second,
			},
			Kafka: KafkaConfig{Topic: "ipguard.notifications", Acks: "all"},
		},
		Messages: MessagesConfig{
			TimeZone:   "UTC",
			TimeLayout: "02/01/2006 15:04:05",
		},
		sources: map[string]string{},
	}
}

// Load reads the file at path (IPGUARD_CONFIG or DefaultPath when empty),
// applies environment overrides and validates the result. A missing file is
// not an error; a malformed one is.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv("IPGUARD_CONFIG")
	}
	if path == "" {
		path = DefaultPath
	}

	cfg := Default()
	cfg.path = path

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := cfg.applyFile(data); err != nil {
			return nil, err
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyFile(data []byte) error {
	if err := yaml.Unmarshal(data, c); err != nil {
		return &Error{Reason: fmt.Sprintf("parse %s: %v", c.path, err)}
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return &Error{Reason: fmt.Sprintf("parse %s: %v", c.path, err)}
	}
	for key := range flatten("", raw) {
		c.sources[key] = "file"
	}
	return nil
}

type envBinding struct {
	name string
	key  string
	set  func(c *Config, v string) error
}

var envBindings = []envBinding{
	{"IPGUARD_ENVIRONMENT", "environment", func(c *Config, v string) error { c.Environment = v; return nil }},
	{"IPGUARD_LOG_LEVEL", "log_level", func(c *Config, v string) error { c.LogLevel = strings.ToLower(v); return nil }},
	{"IPGUARD_ADDR", "server.addr", func(c *Config, v string) error { c.Server.Addr = v; return nil }},
	{"IPGUARD_PUBLIC_URL", "server.public_url", func(c *Config, v string) error { c.Server.PublicURL = v; return nil }},
	{"IPGUARD_ADMIN_TOKEN", "admin.token", func(c *Config, v string) error { c.Admin.Token = v; return nil }},
	{"IPGUARD_RUNTIME_TOKEN", "runtime.token", func(c *Config, v string) error { c.Runtime.Token = v; return nil }},
	{"IPGUARD_POLICY_ENABLED", "policy.enabled", boolSetter(func(c *Config, b bool) { c.Policy.Enabled = b })},
	{"IPGUARD_POLICY_INTERVAL", "policy.interval", durationSetter(func(c *Config, d time.Duration) { c.Policy.Interval = d })},
	{"IPGUARD_STORAGE_TYPE", "storage.type", func(c *Config, v string) error { c.Storage.Type = strings.ToLower(v); return nil }},
	{"IPGUARD_DATABASE_URL", "storage.postgres.url", func(c *Config, v string) error { c.Storage.Postgres.URL = v; return nil }},
	{"IPGUARD_REDIS_URL", "storage.redis.url", func(c *Config, v string) error { c.Storage.Redis.URL = v; return nil }},
	{"IPGUARD_TOKEN_TTL", "approval.token_ttl", durationSetter(func(c *Config, d time.Duration) { c.Approval.TokenTTL = d })},
	{"IPGUARD_APPROVAL_SIGNING_KEY", "approval.signing_key", func(c *Config, v string) error { c.Approval.SigningKey = v; return nil }},
	{"IPGUARD_WEBHOOK_URL", "notifications.webhook.url", func(c *Config, v string) error { c.Notifications.Webhook.URL = v; return nil }},
	{"IPGUARD_KAFKA_BROKERS", "notifications.kafka.brokers", func(c *Config, v string) error { c.Notifications.Kafka.Brokers = v; return nil }},
}

func boolSetter(apply func(*Config, bool)) func(*Config, string) error {
	return func(c *Config, v string) error {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return err
		}
		apply(c, b)
		return nil
	}
}

func durationSetter(apply func(*Config, time.Duration)) func(*Config, string) error {
	return func(c *Config, v string) error {
		d, err := time.ParseDuration(v)
		if err != nil {
			return err
		}
		apply(c, d)
		return nil
	}
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	for _, b := range envBindings {
		v, ok := lookup(b.name)
		if !ok || v == "" {
			continue
		}
		if err := b.set(c, v); err != nil {
			return &Error{Field: b.name, Reason: err.Error()}
		}
		c.sources[b.key] = "env"
	}
	return nil
}

// Validate enforces startup invariants. Every failure is a *Error.
func (c *Config) Validate() error {
	if err := validation.Validate(c); err != nil {
		return &Error{Reason: err.Error()}
	}
	if c.Policy.Interval <= 0 {
		return &Error{Field: "policy.interval", Reason: "must be greater than zero"}
	}
	if c.Policy.JoinCheckDelay < 0 {
		return &Error{Field: "policy.join_check_delay", Reason: "must not be negative"}
	}
	if c.Approval.TokenTTL < 0 {
		return &Error{Field: "approval.token_ttl", Reason: "must not be negative"}
	}
	if c.Approval.SigningKey != "" && c.Server.PublicURL == "" {
		return &Error{Field: "server.public_url", Reason: "is required when approval.signing_key is set"}
	}

	switch c.Storage.Type {
	case StorageFile:
		if c.Storage.File.Path == "" {
			return &Error{Field: "storage.file.path", Reason: "is required"}
		}
	case StorageSQLite:
		if c.Storage.SQLite.Path == "" {
			return &Error{Field: "storage.sqlite.path", Reason: "is required"}
		}
	case StoragePostgres:
		if c.Storage.Postgres.URL == "" {
			return &Error{Field: "storage.postgres.url", Reason: "is required"}
		}
		if !validTableName(c.Storage.Postgres.Table) {
			return &Error{Field: "storage.postgres.table", Reason: "must be a plain identifier"}
		}
	case StorageRedis:
		if c.Storage.Redis.URL == "" {
			return &Error{Field: "storage.redis.url", Reason: "is required"}
		}
	case StorageMemory:
	default:
		return &Error{
			Field:  "storage.type",
			Reason: fmt.Sprintf("unknown storage type %q (want one of %s)", c.Storage.Type, strings.Join(StorageTypes, ", ")),
		}
	}

	if c.Messages.TimeZone != "" {
		if _, err := time.LoadLocation(c.Messages.TimeZone); err != nil {
			return &Error{Field: "messages.time_zone", Reason: err.Error()}
		}
	}
	return nil
}

func validTableName(s string) bool {
	if s == "" || len(s) > 63 {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}

// Location returns the time zone used when rendering message timestamps.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Messages.TimeZone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Path returns the file the configuration was loaded from.
func (c *Config) Path() string { return c.path }

// Attribute is one effective configuration value and where it came from.
type Attribute struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Source string `json:"source"`
}

// secretKeys are masked in Attributes output.
var secretKeys = map[string]bool{
	"admin.token":               true,
	"runtime.token":             true,
	"approval.signing_key":      true,
	"storage.postgres.url":      true,
	"storage.redis.url":         true,
	"notifications.webhook.url": true,
}

// Attributes lists every leaf setting, sorted by name.
func (c *Config) Attributes() []Attribute {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil
	}
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil
	}

	flat := flatten("", raw)
	attrs := make([]Attribute, 0, len(flat))
	for name, value := range flat {
		source := c.sources[name]
		if source == "" {
			source = "default"
		}
		if secretKeys[name] && value != "" {
			value = "********"
		}
		attrs = append(attrs, Attribute{Name: name, Value: value, Source: source})
	}
	sort.Slice(attrs, func(i, j int) bool { return attrs[i].Name < attrs[j].Name })
	return attrs
}

func flatten(prefix string, m map[string]any) map[string]string {
	out := make(map[string]string)
	for k, v := range m {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		switch val := v.(type) {
		case map[string]any:
			for fk, fv := range flatten(key, val) {
				out[fk] = fv
			}
		case []any:
			parts := make([]string, len(val))
			for i, item := range val {
				parts[i] = fmt.Sprint(item)
			}
			out[key] = strings.Join(parts, ",")
		case nil:
			out[key] = ""
		default:
			out[key] = fmt.Sprint(val)
		}
	}
	return out
}
