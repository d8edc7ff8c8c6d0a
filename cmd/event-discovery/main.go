package main

import "github.com/pfrederiksen/event-discovery/internal/cli"

func main() {
	cli.Execute()
}
