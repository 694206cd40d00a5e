// Package stream publishes audit events to a Kafka topic so downstream
// consumers can follow registration changes.
package stream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"

	audit "regsync/pkg/platform/audit"
)

const (
	defaultPartitions  int32 = 3
	defaultReplication int16 = 1
)

// Sink implements audit.Store by producing each event to Kafka, keyed by
// user id so a user's events stay ordered within a partition.
type Sink struct {
	client *kgo.Client
	topic  string
	logger *slog.Logger
}

type Option func(*Sink)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Sink) {
		s.logger = logger
	}
}

// New connects to the brokers. It does not create the topic; call EnsureTopic.
func New(brokers []string, topic string, opts ...Option) (*Sink, error) {
	if len(brokers) == 0 {
		return nil, errors.New("stream: at least one broker is required")
	}
	if topic == "" {
		return nil, errors.New("stream: topic is required")
	}
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
		kgo.RequiredAcks(kgo.AllISRAcks()),
	)
	if err != nil {
		return nil, fmt.Errorf("stream: create client: %w", err)
	}
	s := &Sink{client: client, topic: topic, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// EnsureTopic creates the topic if it does not exist yet.
func (s *Sink) EnsureTopic(ctx context.Context) error {
	admin := kadm.NewClient(s.client)
	resp, err := admin.CreateTopics(ctx, defaultPartitions, defaultReplication, nil, s.topic)
	if err != nil {
		return fmt.Errorf("stream: create topic %s: %w", s.topic, err)
	}
	for _, r := range resp {
		if r.Err != nil && !errors.Is(r.Err, kerr.TopicAlreadyExists) {
			return fmt.Errorf("stream: create topic %s: %w", r.Topic, r.Err)
		}
	}
	return nil
}

// Append produces the event and waits for the broker acknowledgement.
func (s *Sink) Append(ctx context.Context, event audit.Event) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("stream: encode event: %w", err)
	}
	record := &kgo.Record{
		Key:   []byte(event.UserID),
		Value: value,
		Headers: []kgo.RecordHeader{
			{Key: "action", Value: []byte(event.Action)},
			{Key: "category", Value: []byte(event.Category)},
		},
	}
	if err := s.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		s.logger.WarnContext(ctx, "audit stream produce failed",
			"topic", s.topic,
			"action", event.Action,
			"error", err,
		)
		return fmt.Errorf("stream: produce: %w", err)
	}
	return nil
}

// Ping checks broker connectivity.
func (s *Sink) Ping(ctx context.Context) error {
	return s.client.Ping(ctx)
}

func (s *Sink) Close() {
	s.client.Close()
}
