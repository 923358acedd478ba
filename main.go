package main

import "github.com/ValentinKolb/dKG/cmd"

func main() {
	cmd.Execute()
}
