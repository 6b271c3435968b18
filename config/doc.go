// Package config loads nexus configuration.
//
// It uses Viper to read a YAML file found in the standard locations
// (./cmd/<service>/config.yml, ./config/config.yml, ./config.yml), loads an
// optional .env file with godotenv, overlays NEXUS_-prefixed environment
// variables and, when given, command-line flags.
//
// # Usage
//
//	var cfg config.Config
//	if err := config.LoadConfig("nexus", &cfg); err != nil { ... }
//	cfg.ApplyDefaults()
//	if err := cfg.Validate(); err != nil { ... }
//
// Environment variables map onto nested keys by underscore:
// NEXUS_MANAGER_WORKERS sets manager.workers.
package config
