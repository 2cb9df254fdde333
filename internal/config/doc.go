// Package config loads, normalizes, and validates ocwsync configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, loads a local .env file, and honours
// environment fallbacks such as OPENROUTER_API_KEY and LLAMA_CLOUD_API_KEY.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
