package buildstartupprofile

// Input carries the three raw startup source documents. Any of them may be
// empty; the heuristic builder tolerates missing sources.
type Input struct {
	StartupID string                 `json:"startupId"`
	Apollo    map[string]interface{} `json:"apollo,omitempty"`
	StartupKV map[string]interface{} `json:"startupKv,omitempty"`
	Readiness map[string]interface{} `json:"readiness,omitempty"`
	UseLLM    *bool                  `json:"useLlm,omitempty"`
}

type Output struct {
	Success    bool                   `json:"success"`
	Message    string                 `json:"message,omitempty"`
	Profile    map[string]interface{} `json:"profile"`
	LLMRefined bool                   `json:"llmRefined"`
}
