// Package config loads and saves the ghc YAML configuration file.
package config
