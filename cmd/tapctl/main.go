package main

import (
	"github.com/taptowin/taptowin/internal/cli"
)

func main() {
	cli.Execute()
}
