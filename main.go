package main

import "github.com/ogdakke/pathspec/cmd"

func main() {
	cmd.Execute()
}
