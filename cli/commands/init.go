package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"text/template"

	"github.com/spf13/cobra"
)

func (a *App) newInitCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init <project-name>",
		Short: "Initialize a new project",
		Long: `Initialize a new project with a starter layout.

Creates a project directory with:
  - main.go: A starter Go file using the SDK
  - mistral.yaml: Project configuration

Example:
  mistral init mybot
  mistral init mybot --model mistral-large-latest`,
		Args: cobra.ExactArgs(1),
		RunE: a.runInit,
	}

	cmd.Flags().StringVar(&a.initModel, "model", defaultInitModel, "Default model for generated code")

	return cmd
}

// defaultInitModel is the model written into scaffolded projects.
const defaultInitModel = "mistral-small-latest"

func (a *App) runInit(cmd *cobra.Command, args []string) error {
	projectPath := args[0]
	projectName := filepath.Base(projectPath)

	if err := validateProjectName(projectName); err != nil {
		return err
	}

	if _, err := os.Stat(projectPath); err == nil {
		return fmt.Errorf("directory %q already exists", projectPath)
	}

	if err := os.MkdirAll(projectPath, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", projectPath, err)
	}

	data := templateData{Model: a.initModel}

	mainPath := filepath.Join(projectPath, "main.go")
	if err := generateFile(mainPath, mainGoTemplate, data); err != nil {
		return fmt.Errorf("failed to create main.go: %w", err)
	}

	configPath := filepath.Join(projectPath, "mistral.yaml")
	if err := generateFile(configPath, projectYamlTemplate, data); err != nil {
		return fmt.Errorf("failed to create mistral.yaml: %w", err)
	}

	fmt.Fprintf(a.stdout, "Created project: %s\n\n", projectName)
	fmt.Fprintln(a.stdout, "Next steps:")
	fmt.Fprintf(a.stdout, "  cd %s\n", projectPath)
	fmt.Fprintln(a.stdout, "  export MISTRAL_API_KEY=<your-key>")
	fmt.Fprintln(a.stdout, "  go run main.go")

	return nil
}

func validateProjectName(name string) error {
	if name == "" {
		return fmt.Errorf("project name cannot be empty")
	}

	validName := regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_-]*$`)
	if !validName.MatchString(name) {
		return fmt.Errorf("invalid project name %q: must start with a letter and contain only letters, numbers, underscores, and hyphens", name)
	}

	reserved := []string{".", "..", "mistral"}
	for _, r := range reserved {
		if name == r {
			return fmt.Errorf("invalid project name %q: reserved name", name)
		}
	}

	return nil
}

type templateData struct {
	Model string
}

func generateFile(path string, tmplContent string, data templateData) error {
	tmpl, err := template.New("file").Parse(tmplContent)
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return tmpl.Execute(f, data)
}

// Templates

var mainGoTemplate = `package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/petal-labs/mistral"
)

func main() {
	client, err := mistral.NewFromEnv()
	if err != nil {
		fmt.Fprintln(os.Stderr, "MISTRAL_API_KEY not set")
		os.Exit(1)
	}

	resp, err := client.Chat("{{.Model}}").
		User("Hello, world!").
		GetResponse(context.Background())
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println(resp.Output())
}
`

var projectYamlTemplate = `# Project configuration
default_model: {{.Model}}

# API keys should be set via 'mistral keys set' or MISTRAL_API_KEY
`
