package config

const (
	EnvPrefix = "FRESHCART"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	StoreBackendMemory = "memory"
	StoreBackendRedis  = "redis"
	StoreBackendSQL    = "sql"

	DBDriverSQLite   = "sqlite"
	DBDriverPostgres = "postgres"
)

const (
	EnvAppEnv            = "FRESHCART_APP_ENV"
	EnvPort              = "FRESHCART_APP_PORT"
	EnvStoreBackend      = "FRESHCART_STORE_BACKEND"
	EnvDBDriver          = "FRESHCART_DB_DRIVER"
	EnvDBDSN             = "FRESHCART_DB_DSN"
	EnvRedisURL          = "FRESHCART_REDIS_URL"
	EnvRedisAddr         = "FRESHCART_REDIS_ADDR"
	EnvCatalogPageSize   = "FRESHCART_CATALOG_PAGE_SIZE"
	EnvCheckoutFee       = "FRESHCART_CHECKOUT_DELIVERY_FEE"
	EnvCheckoutThreshold = "FRESHCART_CHECKOUT_FREE_DELIVERY_THRESHOLD"
	EnvRateLimitRPS      = "FRESHCART_RATE_LIMIT_RPS"
)
