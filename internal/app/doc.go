// Package app loads configuration and wires the dependency graph for the
// CLI: config file/environment via viper, then a session service bound to a
// transport.
package app
