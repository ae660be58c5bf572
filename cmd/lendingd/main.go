package main

import "github.com/LeJamon/goxrpl-lending/internal/cli"

func main() {
	cli.Execute()
}
