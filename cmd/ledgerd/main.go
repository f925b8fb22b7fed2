package main

import "github.com/nvogel/ledgerd/internal/cli"

func main() {
	cli.Execute()
}
