package main

import "ambient/cmd"

func main() {
	cmd.Execute()
}
