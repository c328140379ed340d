package main

import (
	"os"

	ghccmd "github.com/ghcdesk/ghc/pkg/ghc/cmd"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	root := ghccmd.NewRootCommand(ghccmd.DefaultConfig())
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		return 1
	}
	return 0
}
