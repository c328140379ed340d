// Package token answers "which GitHub token should be used, and is there
// one?" without ever handing the full secret to a display surface.
package token

import (
	"strings"

	"github.com/ghcdesk/ghc/pkg/ghc/credstore"
	"github.com/ghcdesk/ghc/pkg/system"
)

// TailLength is how many trailing characters Status may reveal.
const TailLength = 3

// Status is safe to print: it never carries more than the token's tail.
type Status struct {
	HasToken bool    `json:"has_token" yaml:"has_token"`
	Tail     *string `json:"tail" yaml:"tail"`
}

// Accessor resolves the effective token. It reads the store on every call.
type Accessor struct {
	Store credstore.Store
}

// Resolve returns override when it is non-blank, otherwise the stored
// credential. A store read failure is returned as is.
func (a Accessor) Resolve(override string) (string, bool, error) {
	if v := strings.TrimSpace(override); v != "" {
		return v, true, nil
	}
	if a.Store == nil {
		return "", false, nil
	}
	return a.Store.Load()
}

// Status reports presence of a token and its last TailLength characters.
func (a Accessor) Status(override string) (Status, error) {
	tok, ok, err := a.Resolve(override)
	if err != nil {
		return Status{}, err
	}
	if !ok {
		return Status{}, nil
	}
	tail := system.Tail(tok, TailLength)
	return Status{HasToken: true, Tail: &tail}, nil
}
