package main

import "github.com/dbsmedya/breakingchanges/cmd/breakingchanges/cmd"

func main() {
	cmd.Execute()
}
