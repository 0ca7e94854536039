package cli

import (
	"fmt"
	"io/fs"

	"github.com/go-barry/hx"
	"github.com/go-barry/hx/core"
	"github.com/urfave/cli/v2"
)

var InfoCommand = &cli.Command{
	Name:  "info",
	Usage: "Print configuration, template and cache summary",
	Flags: []cli.Flag{configFlag()},
	Action: func(c *cli.Context) error {
		config := core.LoadConfig(c.String("config"))

		templatesDir := config.TemplatesDir
		if templatesDir == "" {
			templatesDir = "(embedded demo)"
		}
		database := config.Database
		if database == "" {
			database = "(in-memory)"
		}

		fmt.Println("📄 Templates Directory:", templatesDir)
		fmt.Println("📁 Output Directory:", config.OutputDir)
		fmt.Println("🗄️  Database:", database)
		fmt.Println("🔁 Cache Enabled:", config.CacheEnabled)
		fmt.Println("🔁 Debug Headers Enabled:", config.DebugHeaders)
		fmt.Println("🔑 Context Keys:", config.ItemKey+",", config.ItemsKey)
		fmt.Println()

		fsys := hx.TemplateFS(config)
		names, _ := loadTemplates(config).Names()
		components, _ := fs.Glob(fsys, "components/*.html")

		fmt.Println("🗂️  Templates Found:", len(names))
		fmt.Println("📦 Components Found:", len(components))
		fmt.Println("💾 Cached Pages:", core.NewPageCache(config.OutputDir).Count())

		return nil
	},
}
