package main

import "github.com/wundervaflja/rat/internal/cli"

func main() {
	cli.Execute()
}
