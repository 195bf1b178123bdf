package main

import "github.com/macrostudio/macrod/cmd"

func main() {
	cmd.Execute()
}
