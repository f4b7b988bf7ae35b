package main

import "github.com/dbsmedya/pkfinder/cmd/pkfinder/cmd"

func main() {
	cmd.Execute()
}
