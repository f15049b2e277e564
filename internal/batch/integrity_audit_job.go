package batch

import (
	"context"
	"customer-service/internal/infrastructure/monitoring"
	"fmt"
	"log/slog"
	"time"
)

// maxLoggedOrphans bounds the ids written to a single audit log line.
const maxLoggedOrphans = 50

type OrphanFinder interface {
	FindOrphanedIdentities(ctx context.Context) ([]int64, error)
}

// IntegrityAuditJob reports identity records that have no account record.
// Such rows are what an interrupted non-transactional create or delete leaves
// behind. The job only reports them; repair is an operator decision.
type IntegrityAuditJob struct {
	finder OrphanFinder
	logger *slog.Logger
}

func NewIntegrityAuditJob(finder OrphanFinder, logger *slog.Logger) *IntegrityAuditJob {
	if finder == nil || logger == nil {
		panic("IntegrityAuditJob dependencies cannot be nil")
	}
	return &IntegrityAuditJob{
		finder: finder,
		logger: logger.With("job", "IntegrityAudit"),
	}
}

// Run returns the number of orphaned identities found.
func (j *IntegrityAuditJob) Run(ctx context.Context) (int, error) {
	startTime := time.Now()
	j.logger.InfoContext(ctx, "Starting customer integrity audit job.")

	orphans, err := j.finder.FindOrphanedIdentities(ctx)
	if err != nil {
		j.logger.ErrorContext(ctx, "Failed to query orphaned identities, aborting job.", slog.Any("error", err))
		return 0, fmt.Errorf("cannot run integrity audit: %w", err)
	}

	monitoring.SetOrphanedIdentities(len(orphans))

	summaryLog := j.logger.With(
		slog.Duration("duration", time.Since(startTime)),
		slog.Int("orphaned_identities", len(orphans)),
	)
	if len(orphans) == 0 {
		summaryLog.InfoContext(ctx, "Customer integrity audit finished, no orphaned identities.")
		return 0, nil
	}

	logged := orphans
	if len(logged) > maxLoggedOrphans {
		logged = logged[:maxLoggedOrphans]
	}
	monitoring.RecordIntegrityRisk("audit")
	summaryLog.WarnContext(ctx, "Customer integrity audit found identities without accounts.",
		slog.Any("customerIDs", logged),
		slog.Bool("truncated", len(orphans) > maxLoggedOrphans))
	return len(orphans), nil
}
