package models

// Score thresholds for the daily briefing.
const (
	// ScoreShownThreshold is the minimum score for an email to appear in
	// the briefing.
	ScoreShownThreshold = 6

	// ScoreUrgentThreshold marks an email as urgent.
	ScoreUrgentThreshold = 9

	// ScoreDefault is assigned to messages the scorer could not score.
	ScoreDefault = 5
)

// Account error classifications for briefing results.
const (
	ErrorTypeAuthRequired = "AUTH_REQUIRED"
	ErrorTypeOther        = "OTHER"
)

// ScoredEmail is a fetched message annotated with its importance score.
type ScoredEmail struct {
	ParsedMessage
	Score int `json:"score"`
}

// Badge summarizes how many emails an account contributes and whether any
// of them is urgent.
type Badge struct {
	Count     int  `json:"count"`
	HasUrgent bool `json:"has_urgent"`
}

// AccountResult is the per-account outcome of one briefing generation run.
// A failed account still contributes its identity; the failure never
// removes the account from the response.
type AccountResult struct {
	Account   AccountSummary `json:"account"`
	Emails    []ScoredEmail  `json:"emails"`
	Badge     Badge          `json:"badge"`
	HasError  bool           `json:"has_error,omitempty"`
	ErrorType string         `json:"error_type,omitempty"`
	AtLimit   bool           `json:"at_limit,omitempty"`
}

// BriefingResponse is the aggregated briefing across all of a user's
// accounts, ordered by account creation time. This is the unit of caching.
type BriefingResponse struct {
	Accounts     []AccountResult `json:"accounts"`
	TotalScanned int             `json:"total_scanned"`
	TotalShown   int             `json:"total_shown"`
}
