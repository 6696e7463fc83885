// Package store records finished matches. Persistence beyond the one result
// row lives in the surrounding product, not here.
package store

import (
	"context"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type MatchResult struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	SessionID    string    `gorm:"index" json:"session_id"`
	WinnerID     string    `json:"winner_id"`
	LoserID      string    `json:"loser_id"`
	SinglePlayer bool      `json:"single_player"`
	Reason       string    `json:"reason"`
	WinnerShots  int       `json:"winner_shots"`
	LoserShots   int       `json:"loser_shots"`
	FinishedAt   time.Time `json:"finished_at"`
}

type ResultStore interface {
	Record(ctx context.Context, res MatchResult) error
}

// Nop is used when no DATABASE_URL is configured; results are simply not kept.
type Nop struct{}

func (Nop) Record(context.Context, MatchResult) error { return nil }

type Postgres struct {
	db *gorm.DB
}

func OpenPostgres(dsn string) (*Postgres, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&MatchResult{}); err != nil {
		return nil, err
	}
	return &Postgres{db: db}, nil
}

func (p *Postgres) Record(ctx context.Context, res MatchResult) error {
	return p.db.WithContext(ctx).Create(&res).Error
}
