// Package config handles loading and parsing of configuration from YAML
// files and environment variables. It defines the application configuration
// structure: server address, the origin list, the per-attempt timeout, the
// selection-policy flag, and logging settings. Configuration is read once
// at startup and never mutated while requests are in flight.
package config
