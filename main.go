package main

import "github.com/tessro/chime/internal/cli"

func main() {
	cli.Execute()
}
