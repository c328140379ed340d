// Package cmd implements the ghc command line: GitHub device login, token
// status and logout, and running the copilot CLI with the stored token.
package cmd
