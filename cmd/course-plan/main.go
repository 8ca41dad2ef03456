package main

import "github.com/pfrederiksen/course-plan/internal/cli"

func main() {
	cli.Execute()
}
