package audit

import (
	"context"
	"encoding/json"

	"github.com/segmentio/kafka-go"

	"github.com/example/fleet-availability/internal/models"
)

// Stream publishes decision payloads to Kafka for the analytics tooling
// that reads the availability ledger. Like the DB append it is strictly
// best-effort.
type Stream struct {
	writer *kafka.Writer
}

func NewStream(brokers []string, topic string) *Stream {
	w := kafka.NewWriter(kafka.WriterConfig{Brokers: brokers, Topic: topic, Balancer: &kafka.LeastBytes{}})
	return &Stream{writer: w}
}

type streamRecord struct {
	EntryID   string          `json:"entry_id"`
	RiderID   string          `json:"rider_id"`
	Latitude  float64         `json:"latitude"`
	Longitude float64         `json:"longitude"`
	Decision  json.RawMessage `json:"decision"`
	CreatedAt string          `json:"created_at"`
}

func (s *Stream) Publish(ctx context.Context, e models.AvailabilityHistoryEntry) error {
	b, err := json.Marshal(streamRecord{
		EntryID:   e.ID,
		RiderID:   e.RiderID,
		Latitude:  e.Location.Lat,
		Longitude: e.Location.Lon,
		Decision:  json.RawMessage(e.Payload),
		CreatedAt: e.CreatedAt.Format("2006-01-02T15:04:05.000Z07:00"),
	})
	if err != nil {
		return err
	}
	return s.writer.WriteMessages(ctx, kafka.Message{Key: []byte(e.RiderID), Value: b})
}

func (s *Stream) Close() error {
	if s.writer == nil {
		return nil
	}
	return s.writer.Close()
}
