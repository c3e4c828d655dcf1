package main

import "catalogrecon/cmd"

func main() {
	cmd.Execute()
}
