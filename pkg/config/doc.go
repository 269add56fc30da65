// Package config provides application configuration from environment
// variables and an optional YAML file.
//
// # Overview
//
// Configuration starts from defaults, overlays the YAML file named by
// CONCIERGE_CONFIG_FILE (if any), then applies CONCIERGE_* environment
// variables, and finally validates the result.
//
// # Configuration Structure
//
// Backend settings:
//
//	CONCIERGE_BACKEND_URL="http://localhost:3000"
//	CONCIERGE_BACKEND_TIMEOUT="15s"
//
// Credential store settings:
//
//	CONCIERGE_STORE_TYPE="file"  # memory, file, redis, noop
//	CONCIERGE_CREDENTIAL_FILE="~/.concierge/credentials.json"
//	CONCIERGE_REDIS_URL="redis://localhost:6379"
//	CONCIERGE_REDIS_NAMESPACE="concierge"
//
// Session settings:
//
//	CONCIERGE_REFRESH_INTERVAL="1m"
//	CONCIERGE_EXPIRY_WINDOW="5m"
//	CONCIERGE_GRANT_TABLE="/etc/concierge/grants.yaml"
//
// Server settings (serve command):
//
//	CONCIERGE_HOST="127.0.0.1"
//	CONCIERGE_PORT="8080"
//	CONCIERGE_LOGIN_PATH="/login"
//
// Observability settings:
//
//	CONCIERGE_LOG_LEVEL="info"  # debug, info, warn, error
//	CONCIERGE_METRICS_ENABLED="true"
//
// # Usage Example
//
// Load configuration:
//
//	cfg, err := config.LoadConfig()
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	fmt.Printf("Backend: %s\n", cfg.Backend.BaseURL)
//	fmt.Printf("Store: %s\n", cfg.Store.Type)
package config
