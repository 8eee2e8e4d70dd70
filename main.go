package main

import "github.com/KaramelBytes/cnodash/cmd"

func main() {
	cmd.Execute()
}
