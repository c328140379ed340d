// Package credstore persists the single GitHub bearer token ghc works with.
// The default medium is a KEY=value file in the user's home directory
// (~/.env) rewritten atomically; the OS keychain is available as an
// alternative backend. Writers are not mutually excluded: concurrent
// mutations of the same medium resolve as last-writer-wins.
package credstore
