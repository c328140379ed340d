// Package auth implements the GitHub OAuth device authorization grant for
// ghc: requesting a device code, polling the token endpoint under the
// provider's back-off rules, and a login manager that completes the poll in
// the background and reports a single terminal outcome.
package auth
