package main

import "github.com/example/campsched/cmd"

func main() {
	cmd.Execute()
}
