package amqp

import (
	"encoding/json"
	"time"
)

// BatchCompletedMessage announces that a pipeline run produced an invoice
// batch. Consumers fetch run details from the ledger by run ID; the message
// carries only the summary.
type BatchCompletedMessage struct {
	RunID        string    `json:"run_id"`
	InputFile    string    `json:"input_file"`
	OutputFile   string    `json:"output_file"`
	InvoiceCount int       `json:"invoice_count"`
	TotalCents   int64     `json:"total_cents"`
	Timestamp    time.Time `json:"timestamp"`
}

// NewBatchCompletedMessage builds the message with the current timestamp.
func NewBatchCompletedMessage(runID, inputFile, outputFile string, invoiceCount int, totalCents int64) *BatchCompletedMessage {
	return &BatchCompletedMessage{
		RunID:        runID,
		InputFile:    inputFile,
		OutputFile:   outputFile,
		InvoiceCount: invoiceCount,
		TotalCents:   totalCents,
		Timestamp:    time.Now(),
	}
}

// ToJSON converts the message to JSON bytes.
func (m *BatchCompletedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// BatchCompletedMessageFromJSON parses a message from JSON bytes.
func BatchCompletedMessageFromJSON(data []byte) (*BatchCompletedMessage, error) {
	var msg BatchCompletedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
