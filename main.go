package main

import "github.com/shiftwave/lbsync/cmd"

func main() {
	cmd.Execute()
}
