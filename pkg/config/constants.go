package config

// EnvPrefix is passed to envconfig; individual fields carry fully
// qualified names so the prefix stays empty.
const EnvPrefix = ""

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv           = "QUICKBITE_APP_ENV"
	EnvPort             = "QUICKBITE_APP_PORT"
	EnvDBDSN            = "QUICKBITE_DB_DSN"
	EnvDBHost           = "QUICKBITE_DB_HOST"
	EnvDBUser           = "QUICKBITE_DB_USER"
	EnvDBName           = "QUICKBITE_DB_NAME"
	EnvRedisURL         = "QUICKBITE_REDIS_URL"
	EnvJWTSecret        = "QUICKBITE_JWT_SECRET"
	EnvJWTIssuer        = "QUICKBITE_JWT_ISSUER"
	EnvJWTExpMins       = "QUICKBITE_JWT_EXPIRATION_MINUTES"
	EnvGCPProjectID     = "QUICKBITE_GCP_PROJECT_ID"
	EnvPubSubChangesTop = "QUICKBITE_PUBSUB_CHANGES_TOPIC"
	EnvPubSubChangesSub = "QUICKBITE_PUBSUB_CHANGES_SUBSCRIPTION"
)

// DriverSQLite selects the embedded sqlite driver for local development.
const DriverSQLite = "sqlite"

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
