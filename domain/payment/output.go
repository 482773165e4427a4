package payment

import "time"

type PostInput struct {
	CorrelationId string  `json:"correlationId"`
	Amount        float64 `json:"amount"`
}

type PostOutput struct {
	CorrelationId string `json:"correlationId"`
	Status        string `json:"status"`
	Message       string `json:"message"`
}

type SummaryDate struct {
	From *time.Time
	To   *time.Time
}

type ProcessorsSummary struct {
	Default  Summary `json:"default"`
	Fallback Summary `json:"fallback"`
}

type Summary struct {
	TotalRequests int     `json:"totalRequests"`
	TotalAmount   float64 `json:"totalAmount"`
}

// JobPayload is the queue message body; the job key is CorrelationId.
type JobPayload struct {
	CorrelationId string  `json:"correlationId"`
	Amount        float64 `json:"amount"`
}
