package main

import "github.com/meysamhadeli/localepack/cmd"

func main() {
	cmd.Execute()
}
