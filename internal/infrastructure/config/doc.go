// Package config handles loading and validating Vitrine configuration.
//
// This package manages:
//   - Loading configuration from YAML files
//   - Overriding with environment variables
//   - Connection-string variables for optional dependencies
//   - Validation of required fields
//   - Default value handling
//
// Optional dependencies (Redis, NATS, MQTT, InfluxDB) are configured either
// through a single combined connection-string variable (VITRINE_REDIS_URL
// etc.) or through discrete host/port/credential fields. Leaving both forms
// empty is not an error: the dependency simply starts unconfigured and all
// operations against it no-op.
//
// Security Considerations:
//   - Sensitive values (passwords, tokens) should be set via environment variables
//   - The config file should have restricted permissions (0600)
//   - JWT secrets must be changed from defaults before production use
//
// Usage:
//
//	cfg, err := config.Load("configs/config.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Service.Name)
package config
