// Package config loads and validates drawhub configuration.
//
// Configuration is read from a YAML file, then overridden by
// DRAWHUB_* environment variables, then validated. Validation
// fails closed: the server will not start without a JWT signing
// secret of adequate length, and there is no built-in default.
//
// # Example
//
//	database:
//	  path: "./data/drawhub.db"
//	  wal_mode: true
//	  busy_timeout: 5
//
//	api:
//	  host: "0.0.0.0"
//	  port: 8080
//
//	security:
//	  jwt:
//	    secret: ""        # set via DRAWHUB_JWT_SECRET
//	    token_ttl: 24     # hours
//
//	admin:
//	  email: ""           # set via DRAWHUB_ADMIN_EMAIL to bootstrap
//	  password: ""
//	  display_name: "Admin"
package config
