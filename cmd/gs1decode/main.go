package main

import "github.com/MeKo-Tech/gs1decode/cmd/gs1decode/cmd"

func main() {
	cmd.Execute()
}
