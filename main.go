package main

import "github.com/wwi21seb-projekt/alpha-services/cmd"

func main() {
	cmd.Execute()
}
