package main

import "github.com/platinenmacher/pio-helpers/cmd"

func main() {
	cmd.Execute()
}
