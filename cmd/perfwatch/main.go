package main

import (
	_ "go.uber.org/automaxprocs"

	"github.com/voluzi/perfwatch/cmd/perfwatch/cmd"
)

func main() {
	cmd.Execute()
}
