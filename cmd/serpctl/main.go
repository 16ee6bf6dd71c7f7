package main

import "github.com/kitbuilder587/serpclient/internal/cli"

func main() {
	cli.Execute()
}
