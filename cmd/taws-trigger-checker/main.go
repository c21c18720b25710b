package main

import "github.com/oshokin/taws-partitions/cmd/taws-trigger-checker/cmd"

func main() {
	cmd.Execute()
}
