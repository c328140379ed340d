// Package output renders ghc command results as tables, JSON or YAML.
package output
