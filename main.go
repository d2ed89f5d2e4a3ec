package main

import "github.com/Journera/glutil/cmd"

func main() {
	cmd.Execute()
}
