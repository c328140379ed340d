// Package system holds process-wide helpers shared by the ghc packages:
// logger construction and redaction of secrets before they reach a log line.
package system
