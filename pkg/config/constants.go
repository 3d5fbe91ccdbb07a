package config

const (
	EnvPrefix = "CARTSHARE"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN     = "CARTSHARE_DB_DSN"
	EnvUseSQLite = "CARTSHARE_USE_SQLITE"
)
