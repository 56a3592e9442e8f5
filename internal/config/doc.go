// Package config loads the bindvar configuration.
//
// Settings come from three sources, each overriding the one before:
//
//  1. built-in defaults (New)
//  2. an optional file, JSON or YAML by extension
//  3. BINDVAR_* environment variables
//
// # Configuration File Structure
//
//	log:
//	  level: info        # debug, info, warn, error
//	  format: text       # text or json
//	inspector:
//	  addr: localhost:7070
//	metrics:
//	  enabled: true
//	  namespace: bindvar
//	tracing:
//	  enabled: false
//	  endpoint: localhost:4318
//	  insecure: true
//	  serviceName: bindvar
//	presence:
//	  enabled: true
//	  interval: 15s
//	frame:
//	  rate: 60
//
// Every setting has an environment variable named after its path, for
// example BINDVAR_LOG_LEVEL, BINDVAR_PRESENCE_INTERVAL or
// BINDVAR_TRACING_SERVICE_NAME.
//
// # Usage
//
//	cfg, err := config.Load("bindvar.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := cfg.Validate(); err != nil {
//	    log.Fatal(err)
//	}
package config
