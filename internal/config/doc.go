// Package config loads the zapnotify command configuration from a YAML
// file, a .env file and environment variables, and watches the file for
// changes.
package config
