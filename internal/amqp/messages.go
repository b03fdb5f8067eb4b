package amqp

import (
	"encoding/json"
	"time"
)

// RecalcMessage asks the worker to recompute daily balances for one owner
// over a date range. An empty AccountID means every account.
type RecalcMessage struct {
	UserID    string    `json:"userId"`
	AccountID string    `json:"accountId,omitempty"`
	StartDate string    `json:"startDate"`
	EndDate   string    `json:"endDate"`
	Timestamp time.Time `json:"timestamp"`
}

func NewRecalcMessage(userID, accountID, startDate, endDate string) *RecalcMessage {
	return &RecalcMessage{
		UserID:    userID,
		AccountID: accountID,
		StartDate: startDate,
		EndDate:   endDate,
		Timestamp: time.Now(),
	}
}

func (m *RecalcMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func RecalcMessageFromJSON(data []byte) (*RecalcMessage, error) {
	var msg RecalcMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
