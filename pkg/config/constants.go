package config

// EnvPrefix is the common prefix expected on every environment variable.
const EnvPrefix = ""

const (
	AppEnvDev  = "dev"
	AppEnvProd = "production"
)

// Environment variable names shared between Load and the test helpers.
const (
	EnvAppEnv   = "WINECLUB_APP_ENV"
	EnvPort     = "WINECLUB_APP_PORT"
	EnvLogLevel = "WINECLUB_LOG_LEVEL"

	EnvDBDSN      = "WINECLUB_DB_DSN"
	EnvDBHost     = "WINECLUB_DB_HOST"
	EnvDBUser     = "WINECLUB_DB_USER"
	EnvDBName     = "WINECLUB_DB_NAME"
	EnvDBPassword = "WINECLUB_DB_PASSWORD"

	EnvRedisURL = "WINECLUB_REDIS_URL"

	EnvJWTSecret  = "WINECLUB_JWT_SECRET"
	EnvJWTIssuer  = "WINECLUB_JWT_ISSUER"
	EnvJWTExpMins = "WINECLUB_JWT_EXPIRATION_MINUTES"

	EnvSquareAccessToken = "WINECLUB_SQUARE_ACCESS_TOKEN"
	EnvSquareEnv         = "WINECLUB_SQUARE_ENV"
	EnvSquareLocationID  = "WINECLUB_SQUARE_LOCATION_ID"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
