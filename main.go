package main

import "github.com/KaramelBytes/glycoscope/cmd"

func main() {
	cmd.Execute()
}
