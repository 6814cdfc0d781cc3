package scorethesisfit

import "github.com/Ayush1216/Frictionless/internal/matching/engine"

// Input carries the two canonical profiles plus the optional completed-task
// payload from a previous scoring round.
type Input struct {
	MatchID         string                 `json:"matchId,omitempty"`
	StartupID       string                 `json:"startupId,omitempty"`
	InvestorID      string                 `json:"investorId,omitempty"`
	StartupProfile  map[string]interface{} `json:"startupProfile"`
	InvestorProfile map[string]interface{} `json:"investorProfile"`
	CompletedTasks  interface{}            `json:"completedTasks,omitempty"`
}

type Output struct {
	Success bool                `json:"success"`
	Message string              `json:"message,omitempty"`
	MatchID string              `json:"matchId,omitempty"`
	Result  *engine.MatchResult `json:"result,omitempty"`
}
