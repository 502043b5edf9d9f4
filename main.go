package main

import "github.com/pbutland/ai-darwin-awards/cmd"

func main() {
	cmd.Execute()
}
