package config

// EnvPrefix namespaces every environment variable the platform consumes.
const EnvPrefix = "STITCHLINK"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvDBDSN  = "STITCHLINK_DB_DSN"
	EnvDBHost = "STITCHLINK_DB_HOST"
	EnvDBUser = "STITCHLINK_DB_USER"
	EnvDBName = "STITCHLINK_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
