// Package config provides configuration structures and utilities for
// wikiharvest. It defines the run parameters for discovery and
// resolution, loads optional YAML configuration files with per-wiki
// overrides, and resolves XDG directories for local storage.
package config
