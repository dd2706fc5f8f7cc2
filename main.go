package main

import "github.com/hospintel/hospintel_backend/cmd"

func main() {
	cmd.Execute()
}
