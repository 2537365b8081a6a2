package repository

import (
	"context"
	"database/sql"
	"fmt"

	"classroom-ledger/internal/domain"
)

type PostRepository struct {
	db *sql.DB
}

func NewPostRepository(db *sql.DB) *PostRepository {
	return &PostRepository{db: db}
}

// List returns the posts of classID with comments and submissions attached.
// An empty classID lists every class.
func (r *PostRepository) List(ctx context.Context, classID string) ([]domain.Post, error) {
	query := `SELECT id, class_id, author_id, title, content, type, status, priority,
		views, likes, shares, bookmarks, due_date, published_at, created_at, updated_at
		FROM posts WHERE ($1 = '' OR class_id = $1) ORDER BY created_at, id`

	rows, err := r.db.QueryContext(ctx, query, classID)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	defer rows.Close()

	var posts []domain.Post
	index := make(map[string]int)
	for rows.Next() {
		var (
			p                    domain.Post
			dueDate, publishedAt sql.NullTime
		)
		if err := rows.Scan(&p.ID, &p.ClassID, &p.AuthorID, &p.Title, &p.Content, &p.Type, &p.Status, &p.Priority,
			&p.Interactions.Views, &p.Interactions.Likes, &p.Interactions.Shares, &p.Interactions.Bookmarks,
			&dueDate, &publishedAt, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		p.DueDate = timePtr(dueDate)
		p.PublishedAt = timePtr(publishedAt)
		index[p.ID] = len(posts)
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(posts) == 0 {
		return posts, nil
	}

	if err := r.attachComments(ctx, classID, posts, index); err != nil {
		return nil, err
	}
	if err := r.attachSubmissions(ctx, classID, posts, index); err != nil {
		return nil, err
	}
	return posts, nil
}

func (r *PostRepository) attachComments(ctx context.Context, classID string, posts []domain.Post, index map[string]int) error {
	rows, err := r.db.QueryContext(ctx, `SELECT c.id, c.post_id, c.author_id, c.content, c.created_at
		FROM post_comments c JOIN posts p ON p.id = c.post_id
		WHERE ($1 = '' OR p.class_id = $1) ORDER BY c.created_at, c.id`, classID)
	if err != nil {
		return fmt.Errorf("list comments: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			c      domain.Comment
			postID string
		)
		if err := rows.Scan(&c.ID, &postID, &c.AuthorID, &c.Content, &c.CreatedAt); err != nil {
			return fmt.Errorf("scan comment: %w", err)
		}
		if i, ok := index[postID]; ok {
			posts[i].Comments = append(posts[i].Comments, c)
		}
	}
	return rows.Err()
}

func (r *PostRepository) attachSubmissions(ctx context.Context, classID string, posts []domain.Post, index map[string]int) error {
	rows, err := r.db.QueryContext(ctx, `SELECT s.id, s.post_id, s.student_id, s.submitted_at, s.late
		FROM post_submissions s JOIN posts p ON p.id = s.post_id
		WHERE ($1 = '' OR p.class_id = $1) ORDER BY s.submitted_at, s.id`, classID)
	if err != nil {
		return fmt.Errorf("list submissions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			s      domain.Submission
			postID string
		)
		if err := rows.Scan(&s.ID, &postID, &s.StudentID, &s.SubmittedAt, &s.Late); err != nil {
			return fmt.Errorf("scan submission: %w", err)
		}
		if i, ok := index[postID]; ok {
			posts[i].Submissions = append(posts[i].Submissions, s)
		}
	}
	return rows.Err()
}
