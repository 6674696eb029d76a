// Package config defines the updater settings, their compiled-in defaults
// and helpers to load, validate and save them in YAML format.
//
// The settings file is optional: without it every endpoint, path and
// timeout falls back to the constants declared here.
package config
