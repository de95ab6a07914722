package main

import (
	"fmt"
	"os"

	"github.com/gonuts/commander"

	"segyap/app"
)

var cmd *commander.Command

func init() {
	cmd = app.AllCommands()
}

func main() {
	if err := cmd.Dispatch(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "**err**: %v\n", err)
		os.Exit(1)
	}
}
