package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/researchhive/hive-api/internal/domain"
)

// ReviewRepository persists paper reviews.
type ReviewRepository interface {
	Create(ctx context.Context, review *domain.Review) error
	GetByID(ctx context.Context, id string) (*domain.Review, error)
	Delete(ctx context.Context, id string) error
	ListByPaper(ctx context.Context, paperID string) ([]domain.ReviewWithAuthor, error)
}

type reviewRepository struct {
	pool *pgxpool.Pool
}

// NewReviewRepository constructs repository.
func NewReviewRepository(pool *pgxpool.Pool) ReviewRepository {
	return &reviewRepository{pool: pool}
}

func (r *reviewRepository) Create(ctx context.Context, review *domain.Review) error {
	const query = `
        INSERT INTO reviews (user_id, paper_id, comment, rating)
        VALUES ($1, $2, $3, $4)
        RETURNING id, created_at, updated_at`
	err := r.pool.QueryRow(ctx, query,
		review.UserID,
		review.PaperID,
		review.Comment,
		review.Rating,
	).Scan(&review.ID, &review.CreatedAt, &review.UpdatedAt)
	return translate(err)
}

func (r *reviewRepository) GetByID(ctx context.Context, id string) (*domain.Review, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}
	const query = `
        SELECT id, user_id, paper_id, comment, rating, created_at, updated_at
        FROM reviews WHERE id=$1`
	var review domain.Review
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&review.ID,
		&review.UserID,
		&review.PaperID,
		&review.Comment,
		&review.Rating,
		&review.CreatedAt,
		&review.UpdatedAt,
	); err != nil {
		return nil, translate(err)
	}
	return &review, nil
}

func (r *reviewRepository) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrNotFound
	}
	cmd, err := r.pool.Exec(ctx, `DELETE FROM reviews WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *reviewRepository) ListByPaper(ctx context.Context, paperID string) ([]domain.ReviewWithAuthor, error) {
	const query = `
        SELECT r.id, r.user_id, r.paper_id, r.comment, r.rating, r.created_at, r.updated_at,
            u.name, u.profile_pic, u.role
        FROM reviews r
        JOIN users u ON u.id = r.user_id
        WHERE r.paper_id=$1
        ORDER BY r.created_at ASC`

	rows, err := r.pool.Query(ctx, query, paperID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reviews := make([]domain.ReviewWithAuthor, 0)
	for rows.Next() {
		var (
			item domain.ReviewWithAuthor
			role string
		)
		if err := rows.Scan(
			&item.ID,
			&item.UserID,
			&item.PaperID,
			&item.Comment,
			&item.Rating,
			&item.CreatedAt,
			&item.UpdatedAt,
			&item.AuthorName,
			&item.AuthorProfilePic,
			&role,
		); err != nil {
			return nil, err
		}
		item.AuthorRole = domain.Role(role)
		reviews = append(reviews, item)
	}
	return reviews, rows.Err()
}
