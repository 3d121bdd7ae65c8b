package main

import "github.com/jitsucom/snapshotview/cmd"

func main() {
	cmd.Execute()
}
