// Package config loads, normalizes, and validates SmartShelf configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, loads a .env file, and honours BULK_*
// environment overrides such as BULK_UPLOADS_ROOT and BULK_GPIO_PULSE_MS. The
// Config type is built once at process start and passed explicitly to every
// component; nothing in the repository reads settings through a global.
package config
