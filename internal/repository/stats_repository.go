package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/helpdesk-io/helpdesk-service/internal/domain"
)

// StatsRepository computes aggregate counts over tickets and users.
type StatsRepository interface {
	Collect(ctx context.Context) (*domain.Stats, error)
}

type statsRepository struct {
	pool *pgxpool.Pool
}

// NewStatsRepository builds repository.
func NewStatsRepository(pool *pgxpool.Pool) StatsRepository {
	return &statsRepository{pool: pool}
}

func (r *statsRepository) Collect(ctx context.Context) (*domain.Stats, error) {
	stats := &domain.Stats{
		Categories: make(map[domain.TicketCategory]int),
		Priorities: make(map[domain.TicketPriority]int),
	}

	if err := r.statusCounts(ctx, stats); err != nil {
		return nil, err
	}
	if err := r.groupCounts(ctx, `SELECT category, COUNT(*) FROM tickets GROUP BY category`,
		func(key string, count int) { stats.Categories[domain.TicketCategory(key)] = count }); err != nil {
		return nil, err
	}
	if err := r.groupCounts(ctx, `SELECT priority, COUNT(*) FROM tickets GROUP BY priority`,
		func(key string, count int) { stats.Priorities[domain.TicketPriority(key)] = count }); err != nil {
		return nil, err
	}
	if err := r.supportCounts(ctx, stats); err != nil {
		return nil, err
	}
	return stats, nil
}

func (r *statsRepository) statusCounts(ctx context.Context, stats *domain.Stats) error {
	return r.groupCounts(ctx, `SELECT status, COUNT(*) FROM tickets GROUP BY status`,
		func(key string, count int) {
			switch domain.TicketStatus(key) {
			case domain.TicketStatusNew:
				stats.New = count
			case domain.TicketStatusInProgress:
				stats.InProgress = count
			case domain.TicketStatusEscalated:
				stats.Escalated = count
			case domain.TicketStatusResolved:
				stats.Resolved = count
			}
			stats.Total += count
		})
}

func (r *statsRepository) supportCounts(ctx context.Context, stats *domain.Stats) error {
	if err := r.groupCounts(ctx,
		`SELECT role, COUNT(*) FROM users WHERE role IN ('firstline','secondline') GROUP BY role`,
		func(key string, count int) {
			switch domain.Role(key) {
			case domain.RoleFirstline:
				stats.Support.Firstline.Staff = count
			case domain.RoleSecondline:
				stats.Support.Secondline.Staff = count
			}
			stats.Support.TotalStaff += count
		}); err != nil {
		return err
	}

	// Resolved/escalated work attributed to the tier that carried the
	// ticket; a null support level counts as first-line work.
	if err := r.groupCounts(ctx,
		`SELECT COALESCE(support_level, 'firstline'), COUNT(*) FROM tickets WHERE status='resolved' GROUP BY 1`,
		func(key string, count int) {
			switch domain.SupportLevel(key) {
			case domain.SupportLevelFirstline:
				stats.Support.Firstline.Resolved = count
			case domain.SupportLevelSecondline:
				stats.Support.Secondline.Resolved = count
			}
		}); err != nil {
		return err
	}
	return r.groupCounts(ctx,
		`SELECT COALESCE(support_level, 'firstline'), COUNT(*) FROM tickets WHERE status='escalated' GROUP BY 1`,
		func(key string, count int) {
			switch domain.SupportLevel(key) {
			case domain.SupportLevelFirstline:
				stats.Support.Firstline.Escalated = count
			case domain.SupportLevelSecondline:
				stats.Support.Secondline.Escalated = count
			}
		})
}

func (r *statsRepository) groupCounts(ctx context.Context, query string, apply func(key string, count int)) error {
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var key string
		var count int
		if err := rows.Scan(&key, &count); err != nil {
			return err
		}
		apply(key, count)
	}
	return rows.Err()
}
