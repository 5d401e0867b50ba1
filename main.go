package main

import "github.com/showcase-dl/showcase-dl/cmd"

func main() {
	cmd.Execute()
}
