// Package config provides centralized configuration management for the
// SmartMailr runtime, loading JSON configuration files and applying sensible
// defaults for the server, inbox pipeline, and logging subsystems.
package config
