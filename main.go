package main

import (
	"github.com/lhecker/threading/cmd"
)

func main() {
	cmd.Execute()
}
