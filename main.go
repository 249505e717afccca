package main

import "github.com/mcosta/helpchat/internal/commands"

func main() {
	commands.Execute()
}
