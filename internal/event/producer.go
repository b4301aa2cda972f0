package event

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/utafrali/bookshelf/internal/domain"
	pkgkafka "github.com/utafrali/bookshelf/pkg/kafka"
	"github.com/utafrali/bookshelf/pkg/logger"
)

// TopicReviewCreated receives review.created events.
var TopicReviewCreated = pkgkafka.Topic("review", "created")

// Event type and aggregate constants. Review events are keyed by ISBN so all
// events for one book land on the same partition.
const (
	EventTypeReviewCreated = "review.created"
	AggregateTypeBook      = "book"
	SourceBookshelf        = "bookshelf"
)

// ReviewCreatedData is the payload for a review.created event.
type ReviewCreatedData struct {
	ReviewID  string    `json:"review_id"`
	UserID    string    `json:"user_id"`
	BookID    string    `json:"book_id"`
	ISBN      string    `json:"isbn"`
	Rating    int       `json:"rating"`
	CreatedAt time.Time `json:"created_at"`
}

type publisher interface {
	Publish(ctx context.Context, topic string, event *pkgkafka.Event) error
}

// Producer publishes review domain events to Kafka.
type Producer struct {
	kafka  publisher
	logger *slog.Logger
}

// NewProducer creates a new event producer.
func NewProducer(kafka *pkgkafka.Producer, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

// PublishReviewCreated publishes a review.created event.
func (p *Producer) PublishReviewCreated(ctx context.Context, review *domain.Review) error {
	data := ReviewCreatedData{
		ReviewID:  review.ID,
		UserID:    review.UserID,
		BookID:    review.BookID,
		ISBN:      review.ISBN,
		Rating:    review.Rating,
		CreatedAt: review.CreatedAt,
	}

	evt, err := pkgkafka.NewEvent(EventTypeReviewCreated, review.ISBN, AggregateTypeBook, SourceBookshelf, data)
	if err != nil {
		return fmt.Errorf("create review.created event: %w", err)
	}
	if id := logger.CorrelationIDFromContext(ctx); id != "" {
		evt.WithCorrelationID(id)
	}

	if err := p.kafka.Publish(ctx, TopicReviewCreated, evt); err != nil {
		return fmt.Errorf("publish review.created event: %w", err)
	}

	p.logger.InfoContext(ctx, "published review.created event",
		slog.String("review_id", review.ID),
		slog.String("isbn", review.ISBN),
	)

	return nil
}
