package main

import "github.com/goliatone/go-gamerdb/internal/cli"

func main() {
	cli.Execute()
}
