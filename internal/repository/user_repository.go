package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/researchhive/hive-api/internal/domain"
)

// UserRepository defines persistence access for credential records.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByMobile(ctx context.Context, mobile string) (*domain.User, error)
	UpdateProfile(ctx context.Context, id string, update domain.ProfileUpdate) (*domain.User, error)
	Delete(ctx context.Context, id string) error
}

type userRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository returns a Postgres-backed implementation.
func NewUserRepository(pool *pgxpool.Pool) UserRepository {
	return &userRepository{pool: pool}
}

const userColumns = `id, email, mobile_number, password_hash, name, role, profile_pic, gender, age,
        expertise, ongoing_projects, institutions, interests, social_links, visibility,
        created_at, updated_at`

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	const query = `
        INSERT INTO users (email, mobile_number, password_hash, name, role, profile_pic, gender, age,
            expertise, ongoing_projects, institutions, interests, social_links, visibility)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
        RETURNING id, created_at, updated_at`

	err := r.pool.QueryRow(ctx, query,
		user.Email,
		user.MobileNumber,
		user.PasswordHash,
		user.Name,
		string(user.Role),
		user.ProfilePic,
		genderParam(user.Gender),
		user.Age,
		user.Expertise,
		nonNil(user.OngoingProjects),
		nonNil(user.Institutions),
		nonNil(user.Interests),
		nonNil(user.SocialLinks),
		user.Visibility,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	return translate(err)
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id=$1`, id)
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE email=$1`, email)
}

func (r *userRepository) GetByMobile(ctx context.Context, mobile string) (*domain.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE mobile_number=$1`, mobile)
}

func (r *userRepository) UpdateProfile(ctx context.Context, id string, update domain.ProfileUpdate) (*domain.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}

	var role *string
	if update.Role != nil {
		v := string(*update.Role)
		role = &v
	}

	query := `
        UPDATE users SET
            name=COALESCE($1, name),
            role=COALESCE($2, role),
            gender=COALESCE($3, gender),
            age=COALESCE($4, age),
            expertise=COALESCE($5, expertise),
            ongoing_projects=COALESCE($6, ongoing_projects),
            institutions=COALESCE($7, institutions),
            interests=COALESCE($8, interests),
            social_links=COALESCE($9, social_links),
            visibility=COALESCE($10, visibility),
            profile_pic=COALESCE($11, profile_pic),
            updated_at=NOW()
        WHERE id=$12
        RETURNING ` + userColumns

	return r.getOne(ctx, query,
		update.Name,
		role,
		genderParam(update.Gender),
		update.Age,
		update.Expertise,
		update.OngoingProjects,
		update.Institutions,
		update.Interests,
		update.SocialLinks,
		update.Visibility,
		update.ProfilePic,
		id,
	)
}

func (r *userRepository) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrNotFound
	}
	cmd, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *userRepository) getOne(ctx context.Context, query string, args ...any) (*domain.User, error) {
	user, err := scanUser(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, translate(err)
	}
	return user, nil
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var (
		user   domain.User
		role   string
		gender *string
	)
	if err := row.Scan(
		&user.ID,
		&user.Email,
		&user.MobileNumber,
		&user.PasswordHash,
		&user.Name,
		&role,
		&user.ProfilePic,
		&gender,
		&user.Age,
		&user.Expertise,
		&user.OngoingProjects,
		&user.Institutions,
		&user.Interests,
		&user.SocialLinks,
		&user.Visibility,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		return nil, err
	}
	user.Role = domain.Role(role)
	if gender != nil {
		g := domain.Gender(*gender)
		user.Gender = &g
	}
	return &user, nil
}

func genderParam(g *domain.Gender) *string {
	if g == nil {
		return nil
	}
	v := string(*g)
	return &v
}

func nonNil(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}
