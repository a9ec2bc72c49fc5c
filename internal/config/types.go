package config

// AppConfig holds runtime startup configuration loaded from YAML, .env and
// TOURS_* environment variables, in that order of precedence (last wins).
type AppConfig struct {
	Port           int
	Env            string
	DSN            string // MySQL DSN
	RedisURL       string // empty disables redis-backed middleware
	Database       DatabaseRuntimeConfig
	Redis          RedisRuntimeConfig
	Paths          RuntimePathsConfig
	AllowedOrigins []string
	JWTSecret      string
	SessionHours   int
	Site           SiteConfig
	Mail           MailConfig
	Storage        StorageConfig
	RateLimit      RateLimitConfig
	Legacy         LegacyConfig
	BootstrapAdmin BootstrapAdminConfig
}

type DatabaseRuntimeConfig struct {
	DSN          string
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	Charset      string
	ParseTime    bool
	Loc          string
	Params       map[string]string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisRuntimeConfig struct {
	URL      string
	Host     string
	Port     int
	Username string
	Password string
	DB       int
	TLS      bool
}

type RuntimePathsConfig struct {
	Logs   string
	Static string
}

type SiteConfig struct {
	Name     string
	URL      string
	AdminURL string
}

type MailConfig struct {
	Enable    bool
	Host      string
	Port      int
	User      string
	Pass      string
	From      string
	ReplyTo   string
	ResendKey string
	Operator  string
}

type StorageConfig struct {
	Driver         string
	PublicPrefix   string
	Placeholder    string
	MaxSizeMB      int
	MaxWidth       int
	AllowedFormats string
	S3             S3Config
}

type S3Config struct {
	Endpoint        string
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	CustomDomain    string
	PathStyle       bool
	Prefix          string
}

type RateLimitConfig struct {
	InquiryPerMinute int
}

// LegacyConfig points at the document database the previous site ran on.
type LegacyConfig struct {
	MongoURI string
	Database string
}

// BootstrapAdminConfig seeds the first account when the users table is empty.
type BootstrapAdminConfig struct {
	Username string
	Email    string
	Password string
	Name     string
}

type rawAppConfig struct {
	Port           int                     `yaml:"port"`
	Env            string                  `yaml:"env"`
	DSN            string                  `yaml:"dsn"`
	RedisURL       string                  `yaml:"redis_url"`
	Database       rawDatabaseConfig       `yaml:"database"`
	Redis          rawRedisConfig          `yaml:"redis"`
	Paths          rawPathsConfig          `yaml:"paths"`
	AllowedOrigins []string                `yaml:"allowed_origins"`
	JWTSecret      string                  `yaml:"jwt_secret"`
	SessionHours   int                     `yaml:"session_hours"`
	Site           rawSiteConfig           `yaml:"site"`
	Mail           rawMailConfig           `yaml:"mail"`
	Storage        rawStorageConfig        `yaml:"storage"`
	RateLimit      rawRateLimitConfig      `yaml:"rate_limit"`
	Legacy         rawLegacyConfig         `yaml:"legacy"`
	BootstrapAdmin rawBootstrapAdminConfig `yaml:"bootstrap_admin"`
}

type rawDatabaseConfig struct {
	DSN          string            `yaml:"dsn"`
	Host         string            `yaml:"host"`
	Port         int               `yaml:"port"`
	User         string            `yaml:"user"`
	Password     string            `yaml:"password"`
	Name         string            `yaml:"name"`
	Charset      string            `yaml:"charset"`
	ParseTime    *bool             `yaml:"parse_time"`
	Loc          string            `yaml:"loc"`
	Params       map[string]string `yaml:"params"`
	MaxOpenConns int               `yaml:"max_open_conns"`
	MaxIdleConns int               `yaml:"max_idle_conns"`
}

type rawRedisConfig struct {
	URL      string `yaml:"url"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	DB       *int   `yaml:"db"`
	TLS      *bool  `yaml:"tls"`
}

type rawPathsConfig struct {
	Logs   string `yaml:"logs"`
	Static string `yaml:"static"`
}

type rawSiteConfig struct {
	Name     string `yaml:"name"`
	URL      string `yaml:"url"`
	AdminURL string `yaml:"admin_url"`
}

type rawMailConfig struct {
	Enable    *bool  `yaml:"enable"`
	Host      string `yaml:"host"`
	Port      int    `yaml:"port"`
	User      string `yaml:"user"`
	Pass      string `yaml:"pass"`
	From      string `yaml:"from"`
	ReplyTo   string `yaml:"reply_to"`
	ResendKey string `yaml:"resend_key"`
	Operator  string `yaml:"operator"`
}

type rawStorageConfig struct {
	Driver         string      `yaml:"driver"`
	PublicPrefix   string      `yaml:"public_prefix"`
	Placeholder    string      `yaml:"placeholder"`
	MaxSizeMB      int         `yaml:"max_size_mb"`
	MaxWidth       int         `yaml:"max_width"`
	AllowedFormats string      `yaml:"allowed_formats"`
	S3             rawS3Config `yaml:"s3"`
}

type rawS3Config struct {
	Endpoint        string `yaml:"endpoint"`
	Region          string `yaml:"region"`
	Bucket          string `yaml:"bucket"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
	CustomDomain    string `yaml:"custom_domain"`
	PathStyle       *bool  `yaml:"path_style"`
	Prefix          string `yaml:"prefix"`
}

type rawRateLimitConfig struct {
	InquiryPerMinute int `yaml:"inquiry_per_minute"`
}

type rawLegacyConfig struct {
	MongoURI string `yaml:"mongo_uri"`
	Database string `yaml:"database"`
}

type rawBootstrapAdminConfig struct {
	Username string `yaml:"username"`
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
}
