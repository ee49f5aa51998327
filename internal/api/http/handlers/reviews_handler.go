package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/researchhive/hive-api/internal/api/dto"
	"github.com/researchhive/hive-api/internal/auth"
	"github.com/researchhive/hive-api/internal/service"
	apperrors "github.com/researchhive/hive-api/pkg/util"
)

// ReviewsHandler manages paper review endpoints.
type ReviewsHandler struct {
	service *service.ReviewService
}

// NewReviewsHandler constructs handler.
func NewReviewsHandler(reviewService *service.ReviewService) *ReviewsHandler {
	return &ReviewsHandler{service: reviewService}
}

// Create POST /review/create.
func (h *ReviewsHandler) Create(c *fiber.Ctx) error {
	caller, ok := auth.IdentityFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("Unauthorized. No Token is provided")
	}
	var req dto.CreateReviewRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("Invalid request body")
	}

	review, err := h.service.Create(c.UserContext(), caller.ID, service.CreateReviewInput{
		PaperID: req.PaperID,
		Comment: req.Comment,
		Rating:  req.Rating,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(dto.ReviewCreatedResponse{
		Success: true,
		Message: "Review added",
		Review:  dto.NewReviewResponse(review),
	})
}

// Delete DELETE /review/:id.
func (h *ReviewsHandler) Delete(c *fiber.Ctx) error {
	caller, ok := auth.IdentityFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("Unauthorized. No Token is provided")
	}
	if err := h.service.Delete(c.UserContext(), caller.ID, c.Params("id")); err != nil {
		return err
	}
	return c.JSON(dto.SuccessResponse{Success: true, Message: "Review deleted"})
}

// ListByPaper GET /review/:paperId.
func (h *ReviewsHandler) ListByPaper(c *fiber.Ctx) error {
	reviews, err := h.service.ListByPaper(c.UserContext(), c.Params("paperId"))
	if err != nil {
		return err
	}
	out := make([]dto.PaperReviewResponse, 0, len(reviews))
	for _, r := range reviews {
		out = append(out, dto.NewPaperReviewResponse(r))
	}
	return c.JSON(dto.ReviewListResponse{Success: true, Reviews: out})
}
