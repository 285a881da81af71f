package main

import (
	"github.com/mattfenwick/scan-utils/pkg/cli"
)

func main() {
	cli.RunRootCommand()
}
