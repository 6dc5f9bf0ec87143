package main

import "github.com/calmora/breathscope/cmd"

func main() {
	cmd.Execute()
}
