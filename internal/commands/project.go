package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/libros-dev/libros/internal/accounts"
	"github.com/libros-dev/libros/internal/projects"
)

func newProjectCommand(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "project",
		Short: "Manage projects",
	}
	cmd.AddCommand(
		newProjectCreateCommand(opts),
		newProjectListCommand(opts),
		newProjectUpdateCommand(opts),
		newProjectDeleteCommand(opts),
		newProjectUseCommand(opts),
	)
	return cmd
}

func newProjectCreateCommand(opts *globalOptions) *cobra.Command {
	var description, projectType string
	var seed, use bool

	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(opts, func(a *app) error {
				ctx := commandContext(cmd)
				if projectType == "" {
					projectType = a.cfg.Projects.DefaultType
				}
				proj, err := a.projects().Create(ctx, projects.Params{
					Name:        &args[0],
					Description: &description,
					Type:        &projectType,
				})
				if err != nil {
					return err
				}
				if seed {
					if _, err := a.registry(proj.ID).Seed(ctx, accounts.DefaultChart(proj.Type)); err != nil {
						return fmt.Errorf("seeding chart of accounts: %w", err)
					}
				}
				if use {
					if err := a.setCurrentProject(proj.ID); err != nil {
						return err
					}
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Created project %s (%s)\n", proj.Name, proj.ID)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&description, "description", "", "project description")
	cmd.Flags().StringVar(&projectType, "type", "", "project type (default from libros.yaml)")
	cmd.Flags().BoolVar(&seed, "seed", true, "seed the default chart of accounts")
	cmd.Flags().BoolVar(&use, "use", false, "make it the current project")

	return cmd
}

func newProjectListCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List projects, most recently modified first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(opts, func(a *app) error {
				projs, err := a.projects().List(commandContext(cmd))
				if err != nil {
					return err
				}
				tw := newTable(cmd.OutOrStdout())
				row(tw, "", "ID", "NAME", "TYPE", "STATUS", "MODIFIED")
				for _, p := range projs {
					marker := ""
					if p.ID == a.cfg.Projects.Current {
						marker = "*"
					}
					row(tw, marker, p.ID, p.Name, p.Type, p.Status, p.LastModified.Format(time.DateTime))
				}
				return tw.Flush()
			})
		},
	}
}

func newProjectUpdateCommand(opts *globalOptions) *cobra.Command {
	var name, description, projectType, status string

	cmd := &cobra.Command{
		Use:   "update <project>",
		Short: "Update a project's name, description, type or status",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var p projects.Params
			if cmd.Flags().Changed("name") {
				p.Name = &name
			}
			if cmd.Flags().Changed("description") {
				p.Description = &description
			}
			if cmd.Flags().Changed("type") {
				p.Type = &projectType
			}
			if cmd.Flags().Changed("status") {
				p.Status = &status
			}
			return withApp(opts, func(a *app) error {
				ctx := commandContext(cmd)
				proj, err := a.projects().Resolve(ctx, args[0])
				if err != nil {
					return err
				}
				proj, err = a.projects().Update(ctx, proj.ID, p)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Updated project %s (%s)\n", proj.Name, proj.ID)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "new name")
	cmd.Flags().StringVar(&description, "description", "", "new description")
	cmd.Flags().StringVar(&projectType, "type", "", "new type")
	cmd.Flags().StringVar(&status, "status", "", "activo or archivado")

	return cmd
}

func newProjectDeleteCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <project>",
		Short: "Delete a project with its accounts and transactions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(opts, func(a *app) error {
				ctx := commandContext(cmd)
				proj, err := a.projects().Resolve(ctx, args[0])
				if err != nil {
					return err
				}
				if err := a.projects().Delete(ctx, proj.ID); err != nil {
					return err
				}
				if a.cfg.Projects.Current == proj.ID {
					if err := a.setCurrentProject(""); err != nil {
						return err
					}
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted project %s\n", proj.Name)
				return nil
			})
		},
	}
}

func newProjectUseCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "use <project>",
		Short: "Select the project other commands act on",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(opts, func(a *app) error {
				proj, err := a.projects().Resolve(commandContext(cmd), args[0])
				if err != nil {
					return err
				}
				if err := a.setCurrentProject(proj.ID); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Using project %s (%s)\n", proj.Name, proj.ID)
				return nil
			})
		},
	}
}
