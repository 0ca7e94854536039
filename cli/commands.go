package cli

import (
	"github.com/go-barry/hx"
	"github.com/go-barry/hx/core"

	"github.com/urfave/cli/v2"
)

func serverFlags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{
			Name:    "port",
			Aliases: []string{"p"},
			Value:   8080,
			Usage:   "port to listen on",
			EnvVars: []string{"HX_PORT"},
		},
		configFlag(),
	}
}

var DevCommand = &cli.Command{
	Name:  "dev",
	Usage: "Start hx in dev mode (no caching, live reload)",
	Flags: serverFlags(),
	Action: func(c *cli.Context) error {
		cfg := hx.RuntimeConfig{
			Env:         "dev",
			EnableCache: false,
			Port:        c.Int("port"),
			ConfigPath:  c.String("config"),
		}
		hx.Start(cfg)
		return nil
	},
}

var ProdCommand = &cli.Command{
	Name:  "prod",
	Usage: "Start hx in production mode (page cache follows the config)",
	Flags: serverFlags(),
	Action: func(c *cli.Context) error {
		cfg := hx.RuntimeConfig{
			Env:         "prod",
			EnableCache: true,
			Port:        c.Int("port"),
			ConfigPath:  c.String("config"),
		}
		hx.Start(cfg)
		return nil
	},
}

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Value:   core.DefaultConfigFile,
		Usage:   "path to the config file",
	}
}
