package main

import "vidloop/cmd"

func main() {
	cmd.Execute()
}
