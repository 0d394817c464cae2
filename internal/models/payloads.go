package models

// These structs define the JSON payloads exchanged with the HTTP function.

// TableRow is one rendered line of the achievements table.
type TableRow struct {
	ID          string `json:"id,omitempty" yaml:"id,omitempty"`
	Title       string `json:"title,omitempty" yaml:"title,omitempty"`
	StudentName string `json:"studentName,omitempty" yaml:"studentName,omitempty"`
	IssuedDate  string `json:"issuedDate,omitempty" yaml:"issuedDate,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	FileURL     string `json:"fileURL,omitempty" yaml:"fileURL,omitempty"`
	LinkLabel   string `json:"linkLabel,omitempty" yaml:"linkLabel,omitempty"`
	// Sentinel marks the single "no records" row that replaces an empty table.
	Sentinel bool   `json:"sentinel,omitempty" yaml:"sentinel,omitempty"`
	Message  string `json:"message,omitempty" yaml:"message,omitempty"`
}

// Table is the presented listing: column headers plus rows.
type Table struct {
	Columns []string   `json:"columns" yaml:"columns"`
	Rows    []TableRow `json:"rows" yaml:"rows"`
}

// ListAchievementsResponse is the output of GET /achievements.
type ListAchievementsResponse struct {
	Search   string `json:"search"`
	Total    int    `json:"total"`
	Matched  int    `json:"matched"`
	Degraded bool   `json:"degraded,omitempty"`
	Table    Table  `json:"table"`
}

// SubmitAchievementResponse is the output of POST /achievements.
type SubmitAchievementResponse struct {
	Status       string `json:"status"`
	SubmissionID string `json:"submissionId"`
	RecordID     string `json:"recordId"`
	FileURL      string `json:"fileURL"`
	// RefreshError is set when the record was written but the re-read failed.
	RefreshError string `json:"refreshError,omitempty"`
	Table        Table  `json:"table"`
}

// ErrorResponse is written for every failed request.
type ErrorResponse struct {
	Status string `json:"status"`
	Kind   string `json:"kind"`
	Error  string `json:"error"`
}
