package main

import "github.com/Arthurk12/racha-ai/internal/cli"

func main() {
	cli.Execute()
}
