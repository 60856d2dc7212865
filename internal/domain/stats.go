package domain

// TierStats aggregates per-tier staffing and workload counts.
type TierStats struct {
	Staff     int
	Resolved  int
	Escalated int
}

// SupportStats covers both tiers plus the combined headcount.
type SupportStats struct {
	TotalStaff int
	Firstline  TierStats
	Secondline TierStats
}

// Stats is the admin-facing aggregate snapshot. All values are exact counts
// over the full collections at query time.
type Stats struct {
	Total      int
	New        int
	InProgress int
	Escalated  int
	Resolved   int
	Categories map[TicketCategory]int
	Priorities map[TicketPriority]int
	Support    SupportStats
}
