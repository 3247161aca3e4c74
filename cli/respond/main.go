package main

import (
	"os"

	respondcmder "github.com/papercomputeco/respond/cmd/respond"
)

func main() {
	cmd := respondcmder.NewRespondCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
