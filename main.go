package main

import "github.com/devon-mar/linkpager/cmd"

func main() {
	cmd.Execute()
}
