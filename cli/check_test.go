package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/urfave/cli/v2"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "hx.config.yml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestCheckCommand_EmbeddedTemplates(t *testing.T) {
	configPath := writeConfig(t, t.TempDir(), "outputDir: "+t.TempDir()+"\n")

	app := &cli.App{Commands: []*cli.Command{CheckCommand}}

	var runErr error
	output := captureOutput(func() {
		runErr = app.Run([]string{"hx", "check", "--config", configPath})
	})

	if runErr != nil {
		t.Fatalf("expected no error, got %v", runErr)
	}
	for _, name := range []string{"✅ index.html", "✅ layout.html", "✅ user-list.html"} {
		if !strings.Contains(output, name) {
			t.Errorf("expected %q in output, got:\n%s", name, output)
		}
	}
	if !strings.Contains(output, "All templates validated successfully.") {
		t.Errorf("expected final success message, got:\n%s", output)
	}
}

func TestCheckCommand_ParseError(t *testing.T) {
	tmpDir := t.TempDir()
	templatesDir := filepath.Join(tmpDir, "templates")
	_ = os.MkdirAll(templatesDir, 0755)
	_ = os.WriteFile(filepath.Join(templatesDir, "bad.html"), []byte(`{{ if }} {{ end }}`), 0644)
	_ = os.WriteFile(filepath.Join(templatesDir, "good.html"), []byte(`ok`), 0644)

	configPath := writeConfig(t, tmpDir, "templatesDir: "+templatesDir+"\n")

	app := &cli.App{
		Commands:       []*cli.Command{CheckCommand},
		ExitErrHandler: func(c *cli.Context, err error) {},
	}

	var appErr error
	output := captureOutput(func() {
		appErr = app.Run([]string{"hx", "check", "--config", configPath})
	})

	if !strings.Contains(output, "❌ bad.html →") {
		t.Errorf("expected parse error, got:\n%s", output)
	}
	if !strings.Contains(output, "✅ good.html") {
		t.Errorf("expected good template to pass, got:\n%s", output)
	}

	exitErr, ok := appErr.(cli.ExitCoder)
	if !ok || exitErr.ExitCode() != 1 {
		t.Fatalf("expected cli.Exit code 1, got: %v", appErr)
	}
}

func TestCheckCommand_MissingLayout(t *testing.T) {
	tmpDir := t.TempDir()
	templatesDir := filepath.Join(tmpDir, "templates")
	_ = os.MkdirAll(templatesDir, 0755)
	_ = os.WriteFile(filepath.Join(templatesDir, "page.html"), []byte("<!-- layout: missing.html -->\nhi"), 0644)

	configPath := writeConfig(t, tmpDir, "templatesDir: "+templatesDir+"\n")

	app := &cli.App{
		Commands:       []*cli.Command{CheckCommand},
		ExitErrHandler: func(c *cli.Context, err error) {},
	}

	var appErr error
	output := captureOutput(func() {
		appErr = app.Run([]string{"hx", "check", "--config", configPath})
	})

	if !strings.Contains(output, "❌ page.html →") {
		t.Errorf("expected layout error, got:\n%s", output)
	}
	if appErr == nil {
		t.Fatal("expected an error")
	}
}

func TestCheckCommand_NoTemplates(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := writeConfig(t, tmpDir, "templatesDir: "+tmpDir+"/empty\n")
	_ = os.MkdirAll(filepath.Join(tmpDir, "empty"), 0755)

	app := &cli.App{Commands: []*cli.Command{CheckCommand}}

	output := captureOutput(func() {
		_ = app.Run([]string{"hx", "check", "--config", configPath})
	})

	if !strings.Contains(output, "No templates found") {
		t.Errorf("expected empty message, got:\n%s", output)
	}
}
