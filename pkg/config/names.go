package config

// EnvPrefix scopes every environment variable read by Load.
const EnvPrefix = ""

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvDBDSN  = "ARK_DB_DSN"
	EnvDBHost = "ARK_DB_HOST"
	EnvDBUser = "ARK_DB_USER"
	EnvDBName = "ARK_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
