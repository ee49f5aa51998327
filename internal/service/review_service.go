package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/researchhive/hive-api/internal/domain"
	"github.com/researchhive/hive-api/internal/events"
	"github.com/researchhive/hive-api/internal/repository"
	apperrors "github.com/researchhive/hive-api/pkg/util"
)

// CreateReviewInput is the validated review payload.
type CreateReviewInput struct {
	PaperID string `validate:"notblank"`
	Comment string `validate:"notblank,max=500"`
	Rating  int    `validate:"min=1,max=5"`
}

// ReviewService manages paper reviews.
type ReviewService struct {
	reviews repository.ReviewRepository
	events  events.Dispatcher
	logger  *zap.Logger
}

// NewReviewService creates the service.
func NewReviewService(reviews repository.ReviewRepository, dispatcher events.Dispatcher, logger *zap.Logger) *ReviewService {
	if dispatcher == nil {
		dispatcher = events.NewInMemoryDispatcher()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReviewService{reviews: reviews, events: dispatcher, logger: logger}
}

// Create stores a review authored by userID.
func (s *ReviewService) Create(ctx context.Context, userID string, in CreateReviewInput) (*domain.Review, error) {
	in.PaperID = strings.TrimSpace(in.PaperID)
	in.Comment = strings.TrimSpace(in.Comment)
	if err := validateInput(in); err != nil {
		return nil, err
	}

	review := &domain.Review{
		UserID:  userID,
		PaperID: in.PaperID,
		Comment: in.Comment,
		Rating:  in.Rating,
	}
	if err := s.reviews.Create(ctx, review); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("User")
		}
		return nil, apperrors.NewInternalError(err)
	}

	s.publish(ctx, events.Event{
		Type:    events.EventReviewCreated,
		UserID:  userID,
		Payload: events.ReviewPayload{ReviewID: review.ID, PaperID: review.PaperID},
	})
	return review, nil
}

// Delete removes a review owned by userID.
func (s *ReviewService) Delete(ctx context.Context, userID, reviewID string) error {
	review, err := s.reviews.GetByID(ctx, reviewID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NewNotFound("Review")
		}
		return apperrors.NewInternalError(err)
	}
	if review.UserID != userID {
		return apperrors.NewForbidden("Not authorized to delete this review")
	}

	if err := s.reviews.Delete(ctx, reviewID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NewNotFound("Review")
		}
		return apperrors.NewInternalError(err)
	}

	s.publish(ctx, events.Event{
		Type:    events.EventReviewDeleted,
		UserID:  userID,
		Payload: events.ReviewPayload{ReviewID: review.ID, PaperID: review.PaperID},
	})
	return nil
}

// ListByPaper returns every review of paperID with its author's public fields.
func (s *ReviewService) ListByPaper(ctx context.Context, paperID string) ([]domain.ReviewWithAuthor, error) {
	reviews, err := s.reviews.ListByPaper(ctx, paperID)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return reviews, nil
}

func (s *ReviewService) publish(ctx context.Context, event events.Event) {
	if err := s.events.Publish(ctx, event); err != nil {
		s.logger.Warn("event handler failed", zap.String("event", string(event.Type)), zap.Error(err))
	}
}
