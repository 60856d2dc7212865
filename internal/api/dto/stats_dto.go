package dto

import "github.com/helpdesk-io/helpdesk-service/internal/domain"

// TierStatsResponse aggregates per-tier counts.
type TierStatsResponse struct {
	Staff     int `json:"staff"`
	Resolved  int `json:"resolved"`
	Escalated int `json:"escalated"`
}

// SupportStatsResponse covers both support tiers.
type SupportStatsResponse struct {
	TotalStaff int               `json:"total_staff"`
	Firstline  TierStatsResponse `json:"firstline"`
	Secondline TierStatsResponse `json:"secondline"`
}

// StatsResponse is the admin snapshot. Status counts always sum to total.
type StatsResponse struct {
	Total      int                           `json:"total"`
	New        int                           `json:"new"`
	InProgress int                           `json:"in_progress"`
	Escalated  int                           `json:"escalated"`
	Resolved   int                           `json:"resolved"`
	Categories map[domain.TicketCategory]int `json:"categories"`
	Priorities map[domain.TicketPriority]int `json:"priorities"`
	Support    SupportStatsResponse          `json:"support"`
}

// NewStatsResponse maps the domain snapshot.
func NewStatsResponse(stats *domain.Stats) StatsResponse {
	return StatsResponse{
		Total:      stats.Total,
		New:        stats.New,
		InProgress: stats.InProgress,
		Escalated:  stats.Escalated,
		Resolved:   stats.Resolved,
		Categories: stats.Categories,
		Priorities: stats.Priorities,
		Support: SupportStatsResponse{
			TotalStaff: stats.Support.TotalStaff,
			Firstline: TierStatsResponse{
				Staff:     stats.Support.Firstline.Staff,
				Resolved:  stats.Support.Firstline.Resolved,
				Escalated: stats.Support.Firstline.Escalated,
			},
			Secondline: TierStatsResponse{
				Staff:     stats.Support.Secondline.Staff,
				Resolved:  stats.Support.Secondline.Resolved,
				Escalated: stats.Support.Secondline.Escalated,
			},
		},
	}
}
