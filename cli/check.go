package cli

import (
	"fmt"

	"github.com/go-barry/hx"
	"github.com/go-barry/hx/core"
	"github.com/urfave/cli/v2"
)

var CheckCommand = &cli.Command{
	Name:  "check",
	Usage: "Parse and execute every template, components and layouts included",
	Flags: []cli.Flag{configFlag()},
	Action: func(c *cli.Context) error {
		config := core.LoadConfig(c.String("config"))
		templates := loadTemplates(config)

		names, err := templates.Names()
		if err != nil {
			return fmt.Errorf("failed to list templates: %w", err)
		}
		if len(names) == 0 {
			fmt.Println("🤷 No templates found.")
			return nil
		}

		var failed bool
		for _, name := range names {
			if err := templates.Check(name); err != nil {
				failed = true
				fmt.Printf("❌ %s → %v\n", name, err)
				continue
			}
			fmt.Printf("✅ %s\n", name)
		}

		if failed {
			return cli.Exit("some templates failed to compile", 1)
		}

		fmt.Println("✅ All templates validated successfully.")
		return nil
	},
}

func loadTemplates(config core.Config) *core.Templates {
	return core.NewTemplates(hx.TemplateFS(config), core.Assets{
		Env:       "dev",
		PublicDir: config.PublicDir,
		CacheDir:  config.OutputDir,
	})
}
