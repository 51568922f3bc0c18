package models

// IssueStats is the admin dashboard breakdown of issues.
type IssueStats struct {
	Total      int64                   `json:"total"`
	ByStatus   map[IssueStatus]int64   `json:"by_status"`
	ByCategory map[string]int64        `json:"by_category"`
	ByPriority map[IssuePriority]int64 `json:"by_priority"`
	Public     int64                   `json:"public"`
	Unassigned int64                   `json:"unassigned"`
}
