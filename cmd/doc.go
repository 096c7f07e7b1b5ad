// Package cmd provides the command-line interface for transmerge.
//
// This package implements the CLI commands using the Cobra framework. Every
// command reads its settings through Viper, so a value can come from a flag,
// a TRANSMERGE_ environment variable, a .env file or .transmerge.yml.
//
// # Available Commands
//
//   - merge: merge staged translation fragments into one file per locale
//   - watch: merge once, then again whenever a fragment changes
//   - list: list discovered fragments with their extracted locale
//   - config: create, show and validate the configuration
//   - version: show version information
//
// # Command Examples
//
//	// Merge with the configured settings
//	transmerge merge
//
//	// Locale taken from the middle of the file name (shop.de.json)
//	transmerge merge --match '.*\.(\w+)\.json'
//
//	// Render without writing and print the result as JSON
//	transmerge merge --dry-run --format json
//
//	// Re-merge on every change below the staging root
//	transmerge watch --debounce 500ms
//
// # Configuration Precedence
//
//  1. Command-line flags
//  2. TRANSMERGE_* environment variables, including those from .env
//  3. The configuration file (--config, TRANSMERGE_CONFIG_FILE or .transmerge.yml)
//  4. Built-in defaults
package cmd
