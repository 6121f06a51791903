package main

import "github.com/coffeestats/coffee-trade-etl/cmd"

func main() {
	cmd.Execute()
}
