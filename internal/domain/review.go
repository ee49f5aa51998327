package domain

import "time"

// Review is a user's rating and comment on a paper.
type Review struct {
	ID        string
	UserID    string
	PaperID   string
	Comment   string
	Rating    int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ReviewWithAuthor joins a review with the public fields of its author.
type ReviewWithAuthor struct {
	Review
	AuthorName       string
	AuthorProfilePic string
	AuthorRole       Role
}
