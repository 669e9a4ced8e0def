package main

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"

	"github.com/khaledsukkar2/swiftcrud/internal/cli/ui"
	"github.com/khaledsukkar2/swiftcrud/pkg/crud"
)

//go:embed templates/*
var scaffoldFS embed.FS

// scaffoldData feeds the resource scaffold templates
type scaffoldData struct {
	Name   string
	Plural string
	Table  string
	Fields []string
}

var newCmd = &cobra.Command{
	Use:   "new <resource-name>",
	Short: "Scaffold templates and a migration for a new resource",
	Long: `Generate the template folder, migration SQL and a starter configuration
for a resource, prompting for its plural name and fields.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := strings.ToLower(strings.TrimSpace(args[0]))
		if name == "" {
			return fmt.Errorf("resource name cannot be empty")
		}
		if strings.ContainsAny(name, "/\\.") {
			return fmt.Errorf("resource name cannot contain path separators")
		}
		if crud.ReservedKeyword(name) {
			ui.Warning(os.Stderr,
				"%q collides with a reserved path keyword; its routes will be ambiguous", name)
		}

		plural := name + "s"
		if err := survey.AskOne(&survey.Input{
			Message: "Plural name:",
			Default: plural,
		}, &plural); err != nil {
			return err
		}

		var fieldInput string
		if err := survey.AskOne(&survey.Input{
			Message: "Fields (comma separated):",
			Default: "name",
		}, &fieldInput, survey.WithValidator(survey.Required)); err != nil {
			return err
		}

		var fields []string
		for _, f := range strings.Split(fieldInput, ",") {
			if f = strings.TrimSpace(f); f != "" {
				fields = append(fields, f)
			}
		}
		if len(fields) == 0 {
			return fmt.Errorf("at least one field is required")
		}

		data := scaffoldData{
			Name:   name,
			Plural: strings.ToLower(plural),
			Table:  strings.ToLower(plural),
			Fields: fields,
		}

		files := map[string]string{
			filepath.Join("templates", name, name+"_list.html"):   "templates/list.html.tmpl",
			filepath.Join("templates", name, name+"_detail.html"): "templates/detail.html.tmpl",
			filepath.Join("templates", name, name+"_create.html"): "templates/create.html.tmpl",
			filepath.Join("templates", name, name+"_update.html"): "templates/update.html.tmpl",
			filepath.Join("migrations", data.Table+".sql"):        "templates/migration.sql.tmpl",
		}

		// Never clobber an existing config
		if _, err := os.Stat("swiftcrud.yaml"); os.IsNotExist(err) {
			files["swiftcrud.yaml"] = "templates/config.yaml.tmpl"
		}

		for destPath, tmplPath := range files {
			if err := renderScaffold(destPath, tmplPath, data); err != nil {
				return err
			}
			ui.Success(os.Stdout, "created %s", destPath)
		}

		fmt.Printf("\nNext steps:\n")
		fmt.Printf("  1. Apply migrations/%s.sql to your database\n", data.Table)
		fmt.Printf("  2. Register the %s resource in your server\n", name)
		return nil
	},
}

func renderScaffold(destPath, tmplPath string, data scaffoldData) error {
	content, err := scaffoldFS.ReadFile(tmplPath)
	if err != nil {
		return fmt.Errorf("failed to read scaffold template %s: %w", tmplPath, err)
	}

	// Scaffold templates use [[ ]] delimiters so the {{ }} actions meant for
	// the generated HTML templates pass through untouched
	tmpl, err := template.New(filepath.Base(tmplPath)).Delims("[[", "]]").Parse(string(content))
	if err != nil {
		return fmt.Errorf("failed to parse scaffold template %s: %w", tmplPath, err)
	}

	if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", destPath, err)
	}

	f, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", destPath, err)
	}
	defer f.Close()

	if err := tmpl.Execute(f, data); err != nil {
		return fmt.Errorf("failed to render %s: %w", destPath, err)
	}
	return nil
}
