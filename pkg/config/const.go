package config

// EnvPrefix is passed to envconfig; individual fields carry explicit names.
const EnvPrefix = "LCDT"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvDBDSN  = "LCDT_DB_DSN"
	EnvDBHost = "LCDT_DB_HOST"
	EnvDBUser = "LCDT_DB_USER"
	EnvDBName = "LCDT_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
