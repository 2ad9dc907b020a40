package main

import (
	"github.com/mltrust/mltrust/pkg/cli"
)

func main() {
	cli.Execute()
}
