package main

import "github.com/caplayground/caplay/cmd"

func main() {
	cmd.Execute()
}
