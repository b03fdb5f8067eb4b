package amqp

import "testing"

func TestRecalcMessageRoundTrip(t *testing.T) {
	msg := NewRecalcMessage("u1", "bank-abc", "2024-01-01", "2024-01-31")

	data, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("to json: %v", err)
	}

	back, err := RecalcMessageFromJSON(data)
	if err != nil {
		t.Fatalf("from json: %v", err)
	}
	if back.UserID != "u1" || back.AccountID != "bank-abc" {
		t.Errorf("unexpected message: %+v", back)
	}
	if back.StartDate != "2024-01-01" || back.EndDate != "2024-01-31" {
		t.Errorf("unexpected range: %+v", back)
	}
}

func TestRecalcMessageFromJSONRejectsGarbage(t *testing.T) {
	if _, err := RecalcMessageFromJSON([]byte("not json")); err == nil {
		t.Fatal("expected error")
	}
}
