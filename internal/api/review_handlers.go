package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/bookly/bookly-server/internal/domain"
	"github.com/bookly/bookly-server/internal/service"
)

func (s *Server) registerReviewRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listReviews",
		Method:      http.MethodGet,
		Path:        "/api/v1/reviews",
		Summary:     "List reviews",
		Description: "Returns every review (admin only)",
		Tags:        []string{"Reviews"},
		Security:    bearer,
	}, s.handleListReviews)

	huma.Register(s.api, huma.Operation{
		OperationID:   "createReview",
		Method:        http.MethodPost,
		Path:          "/api/v1/reviews/book/{book_uid}",
		Summary:       "Review a book",
		Description:   "Adds the caller's review to a book",
		Tags:          []string{"Reviews"},
		Security:      bearer,
		DefaultStatus: http.StatusCreated,
	}, s.handleCreateReview)

	huma.Register(s.api, huma.Operation{
		OperationID: "getReview",
		Method:      http.MethodGet,
		Path:        "/api/v1/reviews/{review_uid}",
		Summary:     "Get review",
		Description: "Returns a review by UID",
		Tags:        []string{"Reviews"},
		Security:    bearer,
	}, s.handleGetReview)

	huma.Register(s.api, huma.Operation{
		OperationID:   "deleteReview",
		Method:        http.MethodDelete,
		Path:          "/api/v1/reviews/{review_uid}",
		Summary:       "Delete review",
		Description:   "Deletes a review. Only its author may do this.",
		Tags:          []string{"Reviews"},
		Security:      bearer,
		DefaultStatus: http.StatusNoContent,
	}, s.handleDeleteReview)
}

// ReviewsOutput wraps a list of reviews for Huma.
type ReviewsOutput struct {
	Body []*domain.Review
}

// ReviewOutput wraps a review for Huma.
type ReviewOutput struct {
	Body *domain.Review
}

// CreateReviewInput wraps the create review request for Huma.
type CreateReviewInput struct {
	Authorization string `header:"Authorization"`
	BookUID       string `path:"book_uid" doc:"Book UID"`
	Body          service.ReviewCreateRequest
}

// ReviewPathInput identifies a review.
type ReviewPathInput struct {
	Authorization string `header:"Authorization"`
	ReviewUID     string `path:"review_uid" doc:"Review UID"`
}

func (s *Server) handleListReviews(ctx context.Context, input *AuthInput) (*ReviewsOutput, error) {
	if _, err := s.authorizeRequest(ctx, input.Authorization, adminOnly); err != nil {
		return nil, err
	}

	reviews, err := s.services.Review.List(ctx)
	if err != nil {
		return nil, err
	}
	return &ReviewsOutput{Body: reviews}, nil
}

func (s *Server) handleCreateReview(ctx context.Context, input *CreateReviewInput) (*ReviewOutput, error) {
	// Any signed-in account may review, verified or not.
	user, err := s.currentUser(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	review, err := s.services.Review.Create(ctx, user, input.BookUID, input.Body)
	if err != nil {
		return nil, err
	}
	return &ReviewOutput{Body: review}, nil
}

func (s *Server) handleGetReview(ctx context.Context, input *ReviewPathInput) (*ReviewOutput, error) {
	if _, err := s.authorizeRequest(ctx, input.Authorization, anyRole); err != nil {
		return nil, err
	}

	review, err := s.services.Review.Get(ctx, input.ReviewUID)
	if err != nil {
		return nil, err
	}
	return &ReviewOutput{Body: review}, nil
}

func (s *Server) handleDeleteReview(ctx context.Context, input *ReviewPathInput) (*struct{}, error) {
	user, err := s.authorizeRequest(ctx, input.Authorization, anyRole)
	if err != nil {
		return nil, err
	}

	if err := s.services.Review.Delete(ctx, user, input.ReviewUID); err != nil {
		return nil, err
	}
	return nil, nil
}
