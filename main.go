package main

import "github.com/fakeyudi/promptdeck/cmd"

func main() {
	cmd.Execute()
}
