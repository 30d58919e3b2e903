package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"teamhub/internal/domain"
	"teamhub/internal/repository"
)

const createPlayersTable = `
CREATE TABLE IF NOT EXISTS players (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL,
	number INTEGER NOT NULL DEFAULT 0,
	birth_date TEXT NOT NULL DEFAULT '',
	position TEXT NOT NULL DEFAULT '',
	status TEXT NOT NULL DEFAULT 'active',
	created_at DATETIME NOT NULL
);
`

type PlayerRepository struct {
	db *sql.DB
}

func NewPlayerRepository(db *sql.DB) repository.PlayerRepository {
	return &PlayerRepository{db: db}
}

func (r *PlayerRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createPlayersTable); err != nil {
		return fmt.Errorf("create players table: %w", err)
	}
	return nil
}

func (r *PlayerRepository) Create(ctx context.Context, player *domain.Player) (int64, error) {
	player.CreatedAt = time.Now().UTC()
	if player.Status == "" {
		player.Status = domain.PlayerStatusActive
	}

	res, err := r.db.ExecContext(ctx, `
INSERT INTO players (name, number, birth_date, position, status, created_at)
VALUES (?, ?, ?, ?, ?, ?)`,
		player.Name,
		player.Number,
		player.BirthDate,
		player.Position,
		string(player.Status),
		player.CreatedAt,
	)
	if err != nil {
		return 0, fmt.Errorf("insert player: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("player last insert id: %w", err)
	}
	player.ID = id
	return id, nil
}

func (r *PlayerRepository) ListActive(ctx context.Context) ([]domain.Player, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, name, number, birth_date, position, status, created_at
FROM players
WHERE status = 'active'
ORDER BY number ASC`)
	if err != nil {
		return nil, fmt.Errorf("query players: %w", err)
	}
	defer rows.Close()

	var players []domain.Player
	for rows.Next() {
		var (
			p      domain.Player
			status string
		)
		if err := rows.Scan(&p.ID, &p.Name, &p.Number, &p.BirthDate, &p.Position, &status, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan player: %w", err)
		}
		p.Status = domain.PlayerStatus(status)
		players = append(players, p)
	}

	return players, rows.Err()
}

func (r *PlayerRepository) CountActive(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `
SELECT COUNT(*) FROM players WHERE status = 'active'`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count players: %w", err)
	}
	return count, nil
}
