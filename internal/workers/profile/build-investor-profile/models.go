package buildinvestorprofile

// Input carries the raw investor record scraped or entered upstream.
type Input struct {
	InvestorID   string                 `json:"investorId"`
	InvestorData map[string]interface{} `json:"investorData"`
	UseLLM       *bool                  `json:"useLlm,omitempty"`
}

type Output struct {
	Success    bool                   `json:"success"`
	Message    string                 `json:"message,omitempty"`
	Profile    map[string]interface{} `json:"profile"`
	LLMRefined bool                   `json:"llmRefined"`
}
