package main

import (
	"log"
	"os"

	hxcli "github.com/go-barry/hx/cli"
	clilib "github.com/urfave/cli/v2"
)

func main() {
	if err := runApp(os.Args); err != nil {
		log.Fatal(err)
	}
}

func runApp(args []string) error {
	app := &clilib.App{
		Name:  "hx",
		Usage: "Serve JSON or htmx fragments from the same Go handlers",
		Commands: []*clilib.Command{
			hxcli.InitCommand,
			hxcli.DevCommand,
			hxcli.ProdCommand,
			hxcli.CleanCommand,
			hxcli.CheckCommand,
			hxcli.InfoCommand,
		},
	}
	return app.Run(args)
}
