package main

import "github.com/sovieth88-oss/presalectl/cmd"

func main() {
	cmd.Execute()
}
