package main

import "refsync/cmd/refsync/cmd"

func main() {
	cmd.Execute()
}
