package config

const (
	// DefaultConfigPath is used when --config is not provided.
	DefaultConfigPath = "config.yml"
	// EnvPrefix namespaces every environment override.
	EnvPrefix = "TOURS_"

	defaultPort           = 8080
	defaultEnv            = "development"
	defaultDBHost         = "127.0.0.1"
	defaultDBPort         = 3306
	defaultDBUser         = "root"
	defaultDBName         = "bhutan_tours"
	defaultDBCharset      = "utf8mb4"
	defaultDBLoc          = "Local"
	defaultDBMaxOpen      = 20
	defaultDBMaxIdle      = 5
	defaultRedisPort      = 6379
	defaultSessionHours   = 7 * 24
	defaultSiteName       = "Bhutan Travel"
	defaultStorageDriver  = StorageLocal
	defaultPublicPrefix   = "/uploads"
	defaultPlaceholder    = "/uploads/placeholder.jpg"
	defaultMaxImageMB     = 10
	defaultMaxImageWidth  = 2000
	defaultImageFormats   = "jpg,jpeg,png,webp,gif"
	defaultInquiryPerMin  = 5
	defaultLegacyDatabase = "bhutan"
)

const (
	StorageLocal = "local"
	StorageS3    = "s3"
)
