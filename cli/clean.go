package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-barry/hx/core"
	"github.com/urfave/cli/v2"
)

var CleanCommand = &cli.Command{
	Name:      "clean",
	Usage:     "Delete cached pages from the output directory",
	ArgsUsage: "[route (optional)]",
	Flags:     []cli.Flag{configFlag()},
	Action: func(c *cli.Context) error {
		config := core.LoadConfig(c.String("config"))
		cache := core.NewPageCache(config.OutputDir)

		route := c.Args().First()
		if _, err := os.Stat(cache.Dir()); os.IsNotExist(err) {
			fmt.Println("🧼 Nothing to clean:", cache.Dir())
			return nil
		}

		fmt.Println("🧹 Cleaning:", filepath.Join(cache.Dir(), route))
		if err := cache.Clear(route); err != nil {
			return fmt.Errorf("failed to clean cache: %w", err)
		}

		fmt.Println("✅ Done.")
		return nil
	},
}
