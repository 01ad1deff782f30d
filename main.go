package main

import "github.com/valcriss/sovrane/cmd"

func main() {
	cmd.Execute()
}
