// Command runbox runs programs on a Judge0 instance from the terminal.
package main

import "github.com/gsarma/runbox/cmd/runbox/cmd"

func main() {
	cmd.Execute()
}
