package main

import "djrating/cmd/cli/command"

func main() {
	command.Execute()
}
