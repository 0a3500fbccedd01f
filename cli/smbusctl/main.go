// Package main is the smbusctl command itself.
package main

import (
	"log"
	"os"

	"github.com/hwdiag/smbusctl/cli"
)

func main() {
	app := cli.NewApp(os.Stdout, os.Stderr)
	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
