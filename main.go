package main

import "github.com/sovahealth/courier/cmd"

func main() {
	cmd.Execute()
}
