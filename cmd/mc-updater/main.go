package main

import "github.com/oshokin/mc-updater/cmd/mc-updater/cmd"

func main() {
	cmd.Execute()
}
