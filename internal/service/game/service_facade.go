package game

import (
	"context"

	"github.com/iamasit07/connect4-hotseat/internal/domain"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
)

// Service is the entry point for the archive of finished games (facade)
type Service struct {
	Repo GameRepository
}

func NewService(repo GameRepository) *Service {
	return &Service{
		Repo: repo,
	}
}

// FinishedGame returns an archived game, or nil when the ID is unknown
func (s *Service) FinishedGame(ctx context.Context, gameID string) (*domain.GameRecord, error) {
	if s.Repo == nil {
		return nil, domain.ErrArchiveDisabled
	}
	return s.Repo.GetGameByID(ctx, gameID)
}

// RecentGames lists the latest finished games. limit is clamped to [1, 100]; 0 means the default.
func (s *Service) RecentGames(ctx context.Context, limit int) ([]domain.GameRecord, error) {
	if s.Repo == nil {
		return nil, domain.ErrArchiveDisabled
	}
	switch {
	case limit <= 0:
		limit = defaultHistoryLimit
	case limit > maxHistoryLimit:
		limit = maxHistoryLimit
	}

	games, err := s.Repo.ListRecentGames(ctx, limit)
	if err != nil {
		return nil, err
	}
	if games == nil {
		games = []domain.GameRecord{}
	}
	return games, nil
}
