package main

import "github.com/offstage/stagehand/cmd"

func main() {
	cmd.Execute()
}
