package main

import "github.com/KaramelBytes/riskcsv-cli/cmd"

func main() {
	cmd.Execute()
}
