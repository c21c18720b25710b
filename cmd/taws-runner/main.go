package main

import "github.com/oshokin/taws-partitions/cmd/taws-runner/cmd"

func main() {
	cmd.Execute()
}
