package main

import "github.com/yuchialin/canteend/cmd"

func main() {
	cmd.Execute()
}
