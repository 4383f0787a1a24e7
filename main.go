package main

import "tuner/cmd"

func main() {
	cmd.Execute()
}
