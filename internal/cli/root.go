package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/noah-isme/bidportal-archiver/internal/dto"
	"github.com/noah-isme/bidportal-archiver/internal/models"
	"github.com/noah-isme/bidportal-archiver/internal/service"
	"github.com/noah-isme/bidportal-archiver/pkg/database"
)

// Services are the application services the commands drive.
type Services struct {
	Archiver interface {
		ArchiveProject(ctx context.Context, projectID, actorID string) dto.ArchiveResult
	}
	Projects interface {
		FindByID(ctx context.Context, id string) (*models.Project, error)
	}
	Queries interface {
		List(ctx context.Context, query dto.ArchivedProjectQuery) ([]models.ArchivedProject, *models.Pagination, error)
		GetDetail(ctx context.Context, id string) (*models.ArchivedProjectDetail, error)
		FindByOriginalProject(ctx context.Context, projectID string) (*models.ArchivedProject, error)
	}
	Exports interface {
		Export(ctx context.Context, archivedProjectID, format string) (*service.ExportFile, error)
	}
	// WaitIdle blocks until queued asset cleanups finish.
	WaitIdle func(ctx context.Context) error
	Close    func()
}

// Deps wires the CLI to the application. Open is only called by commands that need it.
type Deps struct {
	Open    func(ctx context.Context) (*Services, error)
	Migrate func() (*database.MigrationResult, error)
	Tokens  interface {
		IssueToken(userID string, role models.UserRole, email string) (string, time.Time, error)
	}
}

// NewRootCmd builds the archivectl command tree.
func NewRootCmd(deps Deps, version string) *cobra.Command {
	root := &cobra.Command{
		Use:     "archivectl",
		Short:   "Operate the construction bid portal project archive",
		Version: version,
		Long: `archivectl archives completed projects into the archive schema and inspects
archived projects. It talks to the same database and object store as the API.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(ArchiveCmd(deps))
	root.AddCommand(ListCmd(deps))
	root.AddCommand(ShowCmd(deps))
	root.AddCommand(ExportCmd(deps))
	root.AddCommand(MigrateCmd(deps))
	root.AddCommand(TokenCmd(deps))

	return root
}

func openServices(cmd *cobra.Command, deps Deps) (*Services, func(), error) {
	svc, err := deps.Open(cmd.Context())
	if err != nil {
		return nil, nil, err
	}
	closeFn := func() {
		if svc.Close != nil {
			svc.Close()
		}
	}
	return svc, closeFn, nil
}
