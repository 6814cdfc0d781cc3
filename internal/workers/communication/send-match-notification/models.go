package sendmatchnotification

type Input struct {
	RecipientEmail string  `json:"recipientEmail"`
	StartupName    string  `json:"startupName"`
	InvestorName   string  `json:"investorName"`
	FitScore       float64 `json:"fitScore"`
	Eligible       bool    `json:"eligible"`
	BatchID        string  `json:"batchId,omitempty"`
	Summary        string  `json:"summary,omitempty"`
}

type Output struct {
	Success        bool   `json:"success"`
	Message        string `json:"message,omitempty"`
	EmailMessageID string `json:"emailMessageId,omitempty"`
	SNSMessageID   string `json:"snsMessageId,omitempty"`
}
