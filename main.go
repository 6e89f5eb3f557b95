package main

import "github.com/bcdannyboy/bsmrisk/cli"

func main() {
	cli.Execute()
}
