package main

import "github.com/AIxMath/Acorn-MCP/internal/cli"

func main() {
	cli.Execute()
}
