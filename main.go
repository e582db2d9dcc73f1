package main

import "kcbridge/cmd"

func main() {
	cmd.Execute()
}
