package main

import "github.com/agentic-research/mailcorpus/cmd"

func main() {
	cmd.Execute()
}
