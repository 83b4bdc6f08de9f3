package main

import "github.com/flowr-app/flowr/cmd"

func main() {
	cmd.Execute()
}
