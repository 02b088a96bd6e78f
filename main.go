package main

import "github.com/ByAlphas/BigBaseAlpha-sub000/cmd"

func main() {
	cmd.Execute()
}
