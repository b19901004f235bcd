package main

import "DockerStats/pkg/cmd"

func main() {
	cmd.Execute()
}
