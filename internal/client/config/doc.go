// Package config loads runtime configuration for the EasyDrink client.
//
// Sources, in increasing precedence:
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected with -c or -config.
//  3. Command-line flags (see parseFlags).
//
// Example file:
//
//	{
//	  "identity_provider": "firebase",
//	  "firebase_api_key": "AIza...",
//	  "favorites_backend": "s3",
//	  "s3": {"bucket": "easydrink", "endpoint": "http://127.0.0.1:9000"},
//	  "session_check_interval": "1m"
//	}
package config
