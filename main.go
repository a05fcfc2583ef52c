package main

import "ogc-reserve-cli/cmd"

func main() {
	cmd.Execute()
}
