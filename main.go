package main

import "github.com/Bebin29/shpysync/cmd"

func main() {
	cmd.Execute()
}
