package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/libros-dev/libros/internal/accounts"
	"github.com/libros-dev/libros/internal/config"
	"github.com/libros-dev/libros/internal/model"
	"github.com/libros-dev/libros/internal/projects"
)

const defaultOwner = "local"

func newInitCommand(opts *globalOptions) *cobra.Command {
	var name string
	var owner string
	var projectType string

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a books directory with a first project",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := opts.dir
			if len(args) > 0 {
				dir = args[0]
			}

			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			if !model.ValidProjectType(projectType) {
				return fmt.Errorf("%w: %q", projects.ErrInvalidType, projectType)
			}
			if owner == "" {
				owner = os.Getenv(config.EnvOwner)
			}
			if owner == "" {
				owner = defaultOwner
			}

			if err := runInit(absDir, name, owner, projectType); err != nil {
				return err
			}
			opts.dir = absDir
			return withApp(opts, func(a *app) error {
				return seedFirstProject(cmd, a, name, projectType)
			})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "business name (required)")
	_ = cmd.MarkFlagRequired("name")
	cmd.Flags().StringVar(&owner, "owner", "", "owner of the books (default $LIBROS_OWNER or \"local\")")
	cmd.Flags().StringVar(&projectType, "type", model.DefaultProjectType, "type of the first project")

	return cmd
}

// runInit lays out the books directory and writes libros.yaml.
func runInit(dir, name, owner, projectType string) error {
	if _, err := os.Stat(filepath.Join(dir, config.FileName)); err == nil {
		return fmt.Errorf("%s already exists in %s", config.FileName, dir)
	}

	dirs := []string{
		"import",
		filepath.Join("import", "processed"),
		"exports",
	}
	for _, d := range dirs {
		if err := os.MkdirAll(filepath.Join(dir, d), 0o755); err != nil {
			return fmt.Errorf("creating directory %s: %w", d, err)
		}
	}

	cfg := config.Default(name, owner)
	cfg.Projects.DefaultType = projectType
	if err := config.Save(filepath.Join(dir, config.FileName), cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	gitignore := ".env\nlibros.db*\nexports/\n"
	if err := os.WriteFile(filepath.Join(dir, ".gitignore"), []byte(gitignore), 0o644); err != nil {
		return fmt.Errorf("writing .gitignore: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "import", ".gitkeep"), []byte{}, 0o644); err != nil {
		return fmt.Errorf("writing .gitkeep: %w", err)
	}
	return nil
}

// seedFirstProject creates the business project with its default chart and
// makes it current.
func seedFirstProject(cmd *cobra.Command, a *app, name, projectType string) error {
	ctx := commandContext(cmd)

	proj, err := a.projects().Create(ctx, projects.Params{Name: &name, Type: &projectType})
	if err != nil {
		return err
	}
	n, err := a.registry(proj.ID).Seed(ctx, accounts.DefaultChart(proj.Type))
	if err != nil {
		return fmt.Errorf("seeding chart of accounts: %w", err)
	}

	if err := a.setCurrentProject(proj.ID); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Initialized books for %s at %s (project %s, %d accounts)\n", name, a.dir, proj.ID, n)
	return nil
}
