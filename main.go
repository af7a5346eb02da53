package main

import "mspro-labs/hopmetrics/cmd"

func main() {
	cmd.Execute()
}
