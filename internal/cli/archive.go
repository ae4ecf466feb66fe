package cli

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/noah-isme/bidportal-archiver/internal/models"
	"github.com/noah-isme/bidportal-archiver/internal/service"
)

// ArchiveCmd archives one live project.
func ArchiveCmd(deps Deps) *cobra.Command {
	var (
		actor       string
		reason      string
		yes         bool
		cleanupWait time.Duration
	)

	cmd := &cobra.Command{
		Use:   "archive <project-id>",
		Short: "Archive a live project and delete it from the portal",
		Long: `Copy the project, its categories, tasks, bids, ratings and documents into the
archive schema, delete the live project and remove its files from object storage.

File deletions that fail are retried in the background until the command exits.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(actor) == "" {
				return fmt.Errorf("--actor is required")
			}
			svc, closeFn, err := openServices(cmd, deps)
			if err != nil {
				return err
			}
			defer closeFn()

			ctx := cmd.Context()
			projectID := args[0]
			out := cmd.OutOrStdout()

			project, err := svc.Projects.FindByID(ctx, projectID)
			if err != nil {
				if errors.Is(err, sql.ErrNoRows) {
					return fmt.Errorf("project %s not found", projectID)
				}
				return fmt.Errorf("load project: %w", err)
			}
			fmt.Fprintf(out, "Project: %s - %s [%s]\n", project.ID, project.Name, project.Status)

			if !yes && !confirm(cmd, "Archive this project? The live project will be deleted.") {
				fmt.Fprintln(out, "Aborted.")
				return nil
			}

			result := svc.Archiver.ArchiveProject(service.WithArchiveReason(ctx, reason), projectID, actor)
			if !result.Success {
				fmt.Fprintf(out, "%s %s\n", color.New(color.FgRed).Sprint("FAILED"), result.Message)
				return fmt.Errorf("%s: %s", result.ErrorCode, result.Error)
			}

			fmt.Fprintf(out, "%s %s\n", color.New(color.FgGreen).Sprint("✓"), result.Message)
			fmt.Fprintf(out, "  Archived project: %s\n", result.ArchivedProjectID)
			if result.Stats != nil {
				fmt.Fprintf(out, "  Tasks: %d  Bids: %d  Value: %.2f\n", result.Stats.TotalTasks, result.Stats.TotalBids, result.Stats.TotalValue)
			}
			for _, asset := range result.Assets {
				fmt.Fprintf(out, "  %s %s/%s\n", assetMarker(asset.Status), asset.Bucket, asset.Key)
			}
			for _, warning := range result.Warnings {
				fmt.Fprintf(out, "  %s %s\n", color.New(color.FgYellow).Sprint("!"), warning)
			}

			if len(result.Warnings) > 0 && svc.WaitIdle != nil && cleanupWait > 0 {
				waitCtx, cancel := context.WithTimeout(ctx, cleanupWait)
				defer cancel()
				if err := svc.WaitIdle(waitCtx); err != nil {
					fmt.Fprintf(out, "  %s file cleanup still pending after %s\n", color.New(color.FgYellow).Sprint("!"), cleanupWait)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&actor, "actor", "", "user id recorded as archived_by")
	cmd.Flags().StringVar(&reason, "reason", "", "free-text reason stored in the audit log")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	cmd.Flags().DurationVar(&cleanupWait, "cleanup-wait", 30*time.Second, "how long to wait for retried file deletions")

	return cmd
}

func assetMarker(status models.AssetDeletionStatus) string {
	if status == models.AssetDeleted {
		return color.New(color.FgGreen).Sprint("DELETED")
	}
	return color.New(color.FgRed).Sprint("FAILED ")
}

func confirm(cmd *cobra.Command, prompt string) bool {
	fmt.Fprintf(cmd.OutOrStdout(), "%s [y/N]: ", prompt)
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}
