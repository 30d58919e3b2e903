package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"teamhub/internal/domain"
	"teamhub/internal/repository"
)

const createNewsTable = `
CREATE TABLE IF NOT EXISTS news (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	title TEXT NOT NULL,
	content TEXT NOT NULL,
	author_id INTEGER NOT NULL,
	published INTEGER NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL,
	FOREIGN KEY (author_id) REFERENCES users(id)
);
`

type NewsRepository struct {
	db *sql.DB
}

func NewNewsRepository(db *sql.DB) repository.NewsRepository {
	return &NewsRepository{db: db}
}

func (r *NewsRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createNewsTable); err != nil {
		return fmt.Errorf("create news table: %w", err)
	}
	return nil
}

func (r *NewsRepository) Create(ctx context.Context, article *domain.News) (int64, error) {
	article.CreatedAt = time.Now().UTC()

	published := 0
	if article.Published {
		published = 1
	}

	res, err := r.db.ExecContext(ctx, `
INSERT INTO news (title, content, author_id, published, created_at)
VALUES (?, ?, ?, ?, ?)`,
		article.Title,
		article.Content,
		article.AuthorID,
		published,
		article.CreatedAt,
	)
	if err != nil {
		return 0, fmt.Errorf("insert news: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("news last insert id: %w", err)
	}
	article.ID = id
	return id, nil
}

func (r *NewsRepository) ListPublished(ctx context.Context, limit int) ([]domain.News, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT n.id, n.title, n.content, n.author_id, n.published, n.created_at, u.name
FROM news n
JOIN users u ON n.author_id = u.id
WHERE n.published = 1
ORDER BY n.created_at DESC
LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query news: %w", err)
	}
	defer rows.Close()

	var articles []domain.News
	for rows.Next() {
		var (
			n         domain.News
			published int
		)
		if err := rows.Scan(&n.ID, &n.Title, &n.Content, &n.AuthorID, &published, &n.CreatedAt, &n.AuthorName); err != nil {
			return nil, fmt.Errorf("scan news: %w", err)
		}
		n.Published = published != 0
		articles = append(articles, n)
	}

	return articles, rows.Err()
}
