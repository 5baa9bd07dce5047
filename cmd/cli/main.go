package main

import "github.com/covergen/cmd/cli/cmd"

func main() {
	cmd.Execute()
}
