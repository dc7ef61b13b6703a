package main

import "github.com/guthubrx/ai-developer-analytics-sub001/cmd"

func main() {
	cmd.Execute()
}
