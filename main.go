package main

import "github.com/kozaktomas/headshot/cmd"

func main() {
	cmd.Execute()
}
