package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/bookly/bookly-server/internal/domain"
	domainerrors "github.com/bookly/bookly-server/internal/errors"
	"github.com/bookly/bookly-server/internal/id"
	"github.com/bookly/bookly-server/internal/store"
)

// ReviewService manages book reviews.
type ReviewService struct {
	store  store.Store
	logger *slog.Logger
}

// NewReviewService creates a new review service.
func NewReviewService(store store.Store, logger *slog.Logger) *ReviewService {
	return &ReviewService{store: store, logger: logger}
}

// ReviewCreateRequest contains a rating and its text.
type ReviewCreateRequest struct {
	Rating     int    `json:"rating" validate:"required,gte=1,lte=5"`
	ReviewText string `json:"review_text" validate:"required,max=5000"`
}

// List returns every review.
func (s *ReviewService) List(ctx context.Context) ([]*domain.Review, error) {
	reviews, err := s.store.ListReviews(ctx)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	if reviews == nil {
		reviews = []*domain.Review{}
	}
	return reviews, nil
}

// Get returns one review.
func (s *ReviewService) Get(ctx context.Context, uid string) (*domain.Review, error) {
	r, err := s.store.GetReview(ctx, uid)
	if err != nil {
		return nil, translate(err, domainerrors.ErrReviewNotFound, "get review")
	}
	return r, nil
}

// Create adds a review by user to a book.
func (s *ReviewService) Create(ctx context.Context, user *domain.User, bookUID string, req ReviewCreateRequest) (*domain.Review, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	if _, err := s.store.GetBook(ctx, bookUID); err != nil {
		return nil, translate(err, domainerrors.ErrBookNotFound, "get book")
	}

	r := &domain.Review{
		UID:        id.New(),
		Rating:     req.Rating,
		ReviewText: strings.TrimSpace(req.ReviewText),
		UserUID:    user.UID,
		BookUID:    bookUID,
	}
	r.InitTimestamps()

	if err := s.store.CreateReview(ctx, r); err != nil {
		// The book vanished between the lookup and the insert.
		if errors.Is(err, store.ErrReferenceMissing) {
			return nil, domainerrors.ErrBookNotFound
		}
		return nil, fmt.Errorf("create review: %w", err)
	}

	s.logger.Info("review created", "review_uid", r.UID, "book_uid", bookUID, "user_uid", user.UID)
	return r, nil
}

// Delete removes a review. Only its author may do so.
func (s *ReviewService) Delete(ctx context.Context, user *domain.User, uid string) error {
	r, err := s.Get(ctx, uid)
	if err != nil {
		return err
	}
	if r.UserUID != user.UID {
		return domainerrors.ErrInsufficientPermission
	}

	if err := s.store.DeleteReview(ctx, uid); err != nil {
		return translate(err, domainerrors.ErrReviewNotFound, "delete review")
	}

	s.logger.Info("review deleted", "review_uid", uid, "user_uid", user.UID)
	return nil
}
