// Package config loads the assistant configuration with viper: defaults,
// an optional assistant.yaml, then ASSISTANT_* environment variables. A .env
// file in the working directory is loaded first with godotenv so provider API
// keys can live there.
package config
