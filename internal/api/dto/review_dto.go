package dto

import (
	"time"

	"github.com/researchhive/hive-api/internal/domain"
)

// CreateReviewRequest payload for new reviews.
type CreateReviewRequest struct {
	PaperID string `json:"paperId"`
	Comment string `json:"comment"`
	Rating  int    `json:"rating"`
}

// ReviewResponse is a stored review.
type ReviewResponse struct {
	ID        string    `json:"_id"`
	UserID    string    `json:"userId"`
	PaperID   string    `json:"paperId"`
	Comment   string    `json:"comment"`
	Rating    int       `json:"rating"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// PaperReviewResponse flattens the author into the review.
type PaperReviewResponse struct {
	ID             string    `json:"_id"`
	PaperID        string    `json:"paperId"`
	Comment        string    `json:"comment"`
	Rating         int       `json:"rating"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
	UserID         string    `json:"user_id"`
	UserName       string    `json:"user_name"`
	UserProfilePic string    `json:"user_profile_pic"`
	UserRole       string    `json:"user_role"`
}

// ReviewCreatedResponse acknowledges a new review.
type ReviewCreatedResponse struct {
	Success bool           `json:"success"`
	Message string         `json:"message"`
	Review  ReviewResponse `json:"review"`
}

// ReviewListResponse lists the reviews of one paper.
type ReviewListResponse struct {
	Success bool                  `json:"success"`
	Reviews []PaperReviewResponse `json:"reviews"`
}

// SuccessResponse is a bare acknowledgement.
type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// NewReviewResponse maps a domain review.
func NewReviewResponse(r *domain.Review) ReviewResponse {
	return ReviewResponse{
		ID:        r.ID,
		UserID:    r.UserID,
		PaperID:   r.PaperID,
		Comment:   r.Comment,
		Rating:    r.Rating,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

// NewPaperReviewResponse maps a review joined with its author.
func NewPaperReviewResponse(r domain.ReviewWithAuthor) PaperReviewResponse {
	return PaperReviewResponse{
		ID:             r.ID,
		PaperID:        r.PaperID,
		Comment:        r.Comment,
		Rating:         r.Rating,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
		UserID:         r.UserID,
		UserName:       r.AuthorName,
		UserProfilePic: r.AuthorProfilePic,
		UserRole:       string(r.AuthorRole),
	}
}
