package main

import "github.com/vsinha/bomcost/pkg/interfaces/cli/commands"

func main() {
	commands.Execute()
}
