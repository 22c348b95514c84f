package main

import "github.com/notargets/polymesh/cmd"

func main() {
	cmd.Execute()
}
