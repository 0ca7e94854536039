package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/go-barry/hx/core"
	"github.com/go-barry/hx/demo"
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"
)

var starterFS = demo.Templates()

var InitCommand = &cli.Command{
	Name:  "init",
	Usage: "Write the starter templates and config into the current directory",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "dir",
			Value: "templates",
			Usage: "directory to write the templates into",
		},
	},
	Action: func(c *cli.Context) error {
		targetDir, _ := os.Getwd()
		templatesDir := c.String("dir")
		fmt.Println("🚀 Creating hx project in:", targetDir)

		if err := copyEmbeddedDir(starterFS, ".", filepath.Join(targetDir, templatesDir)); err != nil {
			return fmt.Errorf("failed to create project: %w", err)
		}

		configFile := filepath.Join(targetDir, core.DefaultConfigFile)
		if _, err := os.Stat(configFile); errors.Is(err, fs.ErrNotExist) {
			config := core.DefaultConfig()
			config.TemplatesDir = templatesDir

			data, err := yaml.Marshal(config)
			if err != nil {
				return fmt.Errorf("failed to encode config: %w", err)
			}
			if err := os.WriteFile(configFile, data, 0644); err != nil {
				return fmt.Errorf("failed to write config: %w", err)
			}
			fmt.Println("🔧 Wrote", core.DefaultConfigFile)
		}

		if err := os.MkdirAll(filepath.Join(targetDir, core.DefaultConfig().PublicDir), os.ModePerm); err != nil {
			return fmt.Errorf("failed to create public dir: %w", err)
		}

		fmt.Println("✅ Project created successfully.")
		fmt.Println("▶  Run: hx dev")
		return nil
	},
}

func copyEmbeddedDir(source fs.FS, sourceDir string, targetDir string) error {
	return fs.WalkDir(source, sourceDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(sourceDir, path)
		if err != nil {
			return err
		}

		targetPath := filepath.Join(targetDir, rel)

		if d.IsDir() {
			return os.MkdirAll(targetPath, os.ModePerm)
		}

		data, err := fs.ReadFile(source, path)
		if err != nil {
			return err
		}

		if err := os.MkdirAll(filepath.Dir(targetPath), os.ModePerm); err != nil {
			return err
		}

		return os.WriteFile(targetPath, data, 0644)
	})
}
