package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os/signal"
	"syscall"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/garyjia/lawdesk/internal/config"
	"github.com/garyjia/lawdesk/internal/container"
	"github.com/garyjia/lawdesk/internal/domain/entity"
	"github.com/garyjia/lawdesk/pkg/database"
)

func serveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a.logger.Info("Starting lawdesk",
				zap.String("addr", a.cfg.Server.Addr()),
				zap.String("database", a.cfg.Database.Path))

			return a.withContainer(ctx, func(ctx context.Context, c *container.Container) error {
				srv, err := c.HTTPServer()
				if err != nil {
					return err
				}
				if err := srv.Start(ctx); err != nil {
					return fmt.Errorf("http server: %w", err)
				}
				a.logger.Info("Server exited successfully")
				return nil
			})
		},
	}
}

func migrateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := database.New(database.Config{
				Path:            a.cfg.Database.Path,
				MaxOpenConns:    a.cfg.Database.MaxOpenConns,
				MaxIdleConns:    a.cfg.Database.MaxIdleConns,
				ConnMaxLifetime: a.cfg.Database.ConnMaxLifetime,
			}, a.logger)
			if err != nil {
				return err
			}
			defer db.Close()

			applied, err := database.NewMigrator(db, a.logger).Run(database.Migrations())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "applied %d migration(s) to %s\n", applied, a.cfg.Database.Path)
			return nil
		},
	}
}

func seedCmd(a *app) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load the stage catalog and user directory into empty tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			if file == "" {
				file = a.cfg.Workflow.SeedFile
			}
			seed, err := config.LoadSeed(file)
			if err != nil {
				return err
			}

			// Seed explicitly so the counts can be reported.
			a.cfg.Workflow.SeedFile = ""
			return a.withContainer(cmd.Context(), func(ctx context.Context, c *container.Container) error {
				result, err := c.Seed(ctx, seed)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "created %d stage(s) and %d user(s) from %s\n", result.Stages, result.Users, file)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "seed file (defaults to workflow.seed_file)")
	return cmd
}

func stagesCmd(a *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "stages",
		Short: "List the stage catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withContainer(cmd.Context(), func(ctx context.Context, c *container.Container) error {
				stages, err := c.Services().Stages.ListStages(ctx)
				if err != nil {
					return err
				}
				if asJSON {
					return printJSON(cmd.OutOrStdout(), stages)
				}
				tw := newTable(cmd.OutOrStdout())
				tw.AppendHeader(table.Row{"ID", "Order", "Name", "Approval", "Active", "Color"})
				for _, s := range stages {
					tw.AppendRow(table.Row{s.ID, s.DisplayOrder, s.Name, s.ApprovalType, s.IsActive, s.Color})
				}
				tw.Render()
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "output JSON")
	return cmd
}

func usersCmd(a *app) *cobra.Command {
	var (
		role   string
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "users",
		Short: "List the user directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withContainer(cmd.Context(), func(ctx context.Context, c *container.Container) error {
				users, err := c.Services().Users.ListUsers(ctx, entity.Role(role))
				if err != nil {
					return err
				}
				if asJSON {
					return printJSON(cmd.OutOrStdout(), users)
				}
				tw := newTable(cmd.OutOrStdout())
				tw.AppendHeader(table.Row{"ID", "Username", "Name", "Role", "Main lawyer", "Department"})
				for _, u := range users {
					tw.AppendRow(table.Row{u.ID, u.Username, u.Name, u.Role, u.IsMainLawyer, u.DepartmentID})
				}
				tw.Render()
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&role, "role", "", "role filter")
	cmd.Flags().BoolVar(&asJSON, "json", false, "output JSON")
	return cmd
}

func tasksCmd(a *app) *cobra.Command {
	var (
		f      entity.TaskFilter
		status string
		appr   string
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "List tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			f.Status = entity.TaskStatus(status)
			f.ApprovalStatus = entity.ApprovalStatus(appr)
			return a.withContainer(cmd.Context(), func(ctx context.Context, c *container.Container) error {
				tasks, err := c.Services().Workflow.ListTasks(ctx, f)
				if err != nil {
					return err
				}
				if asJSON {
					return printJSON(cmd.OutOrStdout(), tasks)
				}

				stages, err := c.Services().Stages.ListStages(ctx)
				if err != nil {
					return err
				}
				stageNames := make(map[int64]string, len(stages))
				for _, s := range stages {
					stageNames[s.ID] = s.Name
				}

				tw := newTable(cmd.OutOrStdout())
				tw.AppendHeader(table.Row{"ID", "Code", "Title", "Stage", "Status", "Approval", "Progress", "Assigned to"})
				for _, t := range tasks {
					tw.AppendRow(table.Row{
						t.ID, t.TaskCode, t.Title, stageNames[t.StageID],
						t.Status, t.ApprovalStatus, fmt.Sprintf("%d%%", t.Progress), t.AssignedTo,
					})
				}
				tw.AppendFooter(table.Row{"", "", "", "", "", "", "Total", len(tasks)})
				tw.Render()
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "status filter (pending, in_progress, completed)")
	cmd.Flags().StringVar(&appr, "approval", "", "approval status filter")
	cmd.Flags().Int64Var(&f.StageID, "stage", 0, "stage id filter")
	cmd.Flags().Int64Var(&f.AssignedTo, "assigned-to", 0, "executing lawyer filter")
	cmd.Flags().Int64Var(&f.DepartmentID, "department", 0, "department filter")
	cmd.Flags().IntVar(&f.Limit, "limit", 50, "maximum rows")
	cmd.Flags().IntVar(&f.Offset, "offset", 0, "rows to skip")
	cmd.Flags().BoolVar(&asJSON, "json", false, "output JSON")
	return cmd
}

func newTable(w io.Writer) table.Writer {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleLight)
	return tw
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
