package main

import "github.com/iksnae/completion-estimator/cmd"

func main() {
	cmd.Execute()
}
