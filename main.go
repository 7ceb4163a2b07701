package main

import "dj-cleaner/cmd"

func main() {
	cmd.Execute()
}
