package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/accident-data-etl/internal/config"
	"github.com/couchcryptid/accident-data-etl/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// Publisher produces one message per summary row to a Kafka topic.
// It implements pipeline.Loader.
type Publisher struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewPublisher creates a Kafka producer for the configured summary topic.
func NewPublisher(cfg *config.Config, logger *slog.Logger) *Publisher {
	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(cfg.KafkaBrokers...),
		Topic:                  cfg.KafkaTopic,
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireAll,
		AllowAutoTopicCreation: true,
	}
	return &Publisher{writer: w, logger: logger}
}

// Name identifies the sink in logs and metrics.
func (p *Publisher) Name() string { return "kafka" }

// Load serializes every row of every non-empty summary and publishes them in
// a single WriteMessages call.
func (p *Publisher) Load(ctx context.Context, res domain.Result) error {
	var msgs []kafkago.Message
	for _, s := range res.Summaries {
		if s.Empty() {
			continue
		}
		batch, err := summaryMessages(s, res.GeneratedAt)
		if err != nil {
			return err
		}
		msgs = append(msgs, batch...)
	}
	if len(msgs) == 0 {
		return nil
	}
	if err := p.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("publish summaries: %w", err)
	}
	p.logger.Info("published summaries", "topic", p.writer.Topic, "messages", len(msgs))
	return nil
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

// summaryMessages maps each summary row to a JSON object keyed by column name.
// The message key joins the row's key column values so rows of one group
// always land on the same partition.
func summaryMessages(s domain.Summary, generatedAt time.Time) ([]kafkago.Message, error) {
	records := domain.Records(s.Frame)
	header := records[0]

	keyIdx := make([]int, 0, len(s.Keys))
	for _, k := range s.Keys {
		for i, h := range header {
			if h == k {
				keyIdx = append(keyIdx, i)
			}
		}
	}

	headers := []kafkago.Header{
		{Key: "summary", Value: []byte(s.Name)},
		{Key: "generated_at", Value: []byte(generatedAt.Format(time.RFC3339))},
	}

	msgs := make([]kafkago.Message, 0, len(records)-1)
	for _, rec := range records[1:] {
		row := make(map[string]any, len(header))
		for i, col := range header {
			row[col] = jsonValue(col, rec[i])
		}
		data, err := json.Marshal(row)
		if err != nil {
			return nil, fmt.Errorf("serialize %s row: %w", s.Name, err)
		}

		keys := make([]string, len(keyIdx))
		for i, j := range keyIdx {
			keys[i] = rec[j]
		}
		msgs = append(msgs, kafkago.Message{
			Key:     []byte(s.Name + ":" + strings.Join(keys, "|")),
			Value:   data,
			Headers: headers,
		})
	}
	return msgs, nil
}

// textColumns hold names and labels that must stay strings even when they
// look numeric.
var textColumns = map[string]bool{
	domain.ColState:           true,
	domain.ColCity:            true,
	domain.ColWeatherCategory: true,
	domain.ColDayName:         true,
}

// jsonValue keeps numbers numeric in the payload; blank cells become null.
// Text columns and non-finite numbers are sent as strings.
func jsonValue(col, v string) any {
	if v == "" {
		return nil
	}
	if textColumns[col] {
		return v
	}
	if n, err := strconv.ParseInt(v, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil && !math.IsInf(f, 0) && !math.IsNaN(f) {
		return f
	}
	return v
}
