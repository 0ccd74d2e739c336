package config

const (
	EnvPrefix = ""

	AppEnvDev  = "dev"
	AppEnvProd = "production"

	EnvAppEnv          = "SHOPCORE_APP_ENV"
	EnvLogLevel        = "SHOPCORE_LOG_LEVEL"
	EnvGCPProjectID    = "SHOPCORE_GCP_PROJECT_ID"
	EnvCredentialsFile = "SHOPCORE_GOOGLE_APPLICATION_CREDENTIALS"
	EnvFirebaseAPIKey  = "SHOPCORE_FIREBASE_WEB_API_KEY"
	EnvIdentityBaseURL = "SHOPCORE_IDENTITY_TOOLKIT_URL"
	EnvCatalogBaseURL  = "SHOPCORE_CATALOG_BASE_URL"
	EnvTelemetryTopic  = "SHOPCORE_PUBSUB_TELEMETRY_TOPIC"
)
