package batchmatchinvestors

import "github.com/Ayush1216/Frictionless/internal/matching/batch"

// Input selects the candidate pool with optional sector and geo filters.
// Empty filters scan every active investor up to the candidate cap.
type Input struct {
	BatchID        string                 `json:"batchId,omitempty"`
	StartupID      string                 `json:"startupId,omitempty"`
	StartupProfile map[string]interface{} `json:"startupProfile"`
	Sectors        []string               `json:"sectors,omitempty"`
	Geos           []string               `json:"geos,omitempty"`
	Limit          int                    `json:"limit,omitempty"`
	BestN          int                    `json:"bestN,omitempty"`
}

type Output struct {
	Success        bool           `json:"success"`
	Message        string         `json:"message,omitempty"`
	BatchID        string         `json:"batchId"`
	CandidateCount int            `json:"candidateCount"`
	Results        []batch.Result `json:"results"`
}
