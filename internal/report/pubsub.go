package report

import (
	"context"
	"fmt"

	"cloud.google.com/go/pubsub"
	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/roadwatch/camsnap/internal/poller"
)

// PubSubReporter publishes a JSON cycle summary to a Google Pub/Sub topic.
type PubSubReporter struct {
	client *pubsub.Client
	topic  *pubsub.Topic
	logger *zap.Logger
}

// NewPubSubReporter connects to the project and verifies the topic exists.
func NewPubSubReporter(ctx context.Context, projectID, topicID string, logger *zap.Logger) (*PubSubReporter, error) {
	client, err := pubsub.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("create pubsub client: %w", err)
	}
	topic := client.Topic(topicID)
	ok, err := topic.Exists(ctx)
	if err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("check pubsub topic %q: %w", topicID, err)
	}
	if !ok {
		_ = client.Close()
		return nil, fmt.Errorf("pubsub topic %q does not exist", topicID)
	}
	return &PubSubReporter{client: client, topic: topic, logger: logger}, nil
}

// Report publishes the cycle summary, waiting for the server ack so a dead
// topic surfaces in the logs rather than silently queueing forever.
func (r *PubSubReporter) Report(ctx context.Context, cr poller.CycleReport) {
	payload, err := json.Marshal(cr)
	if err != nil {
		r.logger.Warn("marshal cycle report", zap.Error(err))
		return
	}
	result := r.topic.Publish(ctx, &pubsub.Message{Data: payload})
	if _, err := result.Get(ctx); err != nil {
		r.logger.Warn("publish cycle report",
			zap.String("run_id", cr.RunID),
			zap.Int("cycle", cr.Cycle),
			zap.Error(err),
		)
	}
}

// Close flushes the topic and releases the client.
func (r *PubSubReporter) Close() error {
	r.topic.Stop()
	if err := r.client.Close(); err != nil {
		return fmt.Errorf("close pubsub client: %w", err)
	}
	return nil
}
