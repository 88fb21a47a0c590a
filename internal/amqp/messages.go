package amqp

import (
	"encoding/json"
	"time"
)

// TripSyncMessage carries only the trip ID; the worker loads the full
// trip from the database so the queue never holds stale copies.
type TripSyncMessage struct {
	TripID    int64     `json:"trip_id"`
	Timestamp time.Time `json:"timestamp"`
}

func NewTripSyncMessage(tripID int64) *TripSyncMessage {
	return &TripSyncMessage{
		TripID:    tripID,
		Timestamp: time.Now(),
	}
}

func (m *TripSyncMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func TripSyncMessageFromJSON(data []byte) (*TripSyncMessage, error) {
	var msg TripSyncMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
