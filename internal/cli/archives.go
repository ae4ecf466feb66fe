package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/noah-isme/bidportal-archiver/internal/dto"
)

// ListCmd lists archived projects.
func ListCmd(deps Deps) *cobra.Command {
	var query dto.ArchivedProjectQuery

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List archived projects, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, closeFn, err := openServices(cmd, deps)
			if err != nil {
				return err
			}
			defer closeFn()

			items, pagination, err := svc.Queries.List(cmd.Context(), query)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(items) == 0 {
				fmt.Fprintln(out, "No archived projects.")
				return nil
			}

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tTASKS\tBIDS\tVALUE\tARCHIVED BY\tARCHIVED AT")
			for _, p := range items {
				fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%.2f\t%s\t%s\n",
					p.ID, p.Name, p.TotalTasks, p.TotalBids, p.TotalValue, p.ArchivedBy, p.ArchivedAt.Format("2006-01-02 15:04"))
			}
			if err := w.Flush(); err != nil {
				return err
			}
			if pagination != nil {
				fmt.Fprintf(out, "\nPage %d (%d per page), %d total\n", pagination.Page, pagination.Limit, pagination.TotalCount)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&query.Page, "page", 1, "page number")
	cmd.Flags().IntVar(&query.Limit, "limit", 20, "page size")
	cmd.Flags().StringVar(&query.Search, "search", "", "filter by project name")
	cmd.Flags().StringVar(&query.ArchivedBy, "archived-by", "", "filter by archiving user id")

	return cmd
}

// ShowCmd prints one archived project with its archived descendants.
func ShowCmd(deps Deps) *cobra.Command {
	var (
		original bool
		asJSON   bool
	)

	cmd := &cobra.Command{
		Use:   "show <archived-project-id>",
		Short: "Show an archived project and its tasks, bids and documents",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, closeFn, err := openServices(cmd, deps)
			if err != nil {
				return err
			}
			defer closeFn()

			ctx := cmd.Context()
			id := args[0]
			if original {
				project, err := svc.Queries.FindByOriginalProject(ctx, id)
				if err != nil {
					return err
				}
				id = project.ID
			}

			detail, err := svc.Queries.GetDetail(ctx, id)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(detail)
			}

			fmt.Fprintf(out, "%s %s\n", color.New(color.Bold).Sprint(detail.Name), color.New(color.FgCyan).Sprintf("[%s]", detail.Status))
			fmt.Fprintf(out, "  Archive ID:       %s\n", detail.ID)
			fmt.Fprintf(out, "  Original project: %s\n", detail.OriginalProjectID)
			fmt.Fprintf(out, "  Archived by:      %s at %s\n", detail.ArchivedBy, detail.ArchivedAt.Format("2006-01-02 15:04:05"))
			fmt.Fprintf(out, "  Tasks: %d  Bids: %d  Value: %.2f\n", detail.TotalTasks, detail.TotalBids, detail.TotalValue)
			for _, category := range detail.Categories {
				fmt.Fprintf(out, "\n  %s\n", color.New(color.FgHiMagenta).Sprint(category.Name))
				for _, task := range category.Tasks {
					fmt.Fprintf(out, "    - %s [%s] bids=%d ratings=%d documents=%d\n",
						task.Name, task.Status, len(task.Bids), len(task.Ratings), len(task.Documents))
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&original, "original", false, "treat the argument as the live project id that was archived")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")

	return cmd
}

// ExportCmd writes the archived project report to a file.
func ExportCmd(deps Deps) *cobra.Command {
	var (
		format string
		output string
	)

	cmd := &cobra.Command{
		Use:   "export <archived-project-id>",
		Short: "Export an archived project report as CSV or PDF",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, closeFn, err := openServices(cmd, deps)
			if err != nil {
				return err
			}
			defer closeFn()

			file, err := svc.Exports.Export(cmd.Context(), args[0], format)
			if err != nil {
				return err
			}
			path := output
			if path == "" {
				path = file.FileName
			}
			if err := os.WriteFile(path, file.Data, 0o644); err != nil {
				return fmt.Errorf("write report: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%d bytes)\n", path, len(file.Data))
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "csv", "csv or pdf")
	cmd.Flags().StringVarP(&output, "output", "o", "", "destination file (defaults to a generated name)")

	return cmd
}
