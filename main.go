package main

import (
	"glyphtone/cmd"
)

func main() {
	cmd.Execute()
}
