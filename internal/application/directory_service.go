package application

import (
	"context"

	"github.com/oksasatya/go-user-accounts/internal/domain/entity"
	"github.com/oksasatya/go-user-accounts/internal/domain/policy"
	repo "github.com/oksasatya/go-user-accounts/internal/domain/repository"
)

const (
	defaultPerPage = 10
	maxPerPage     = 100

	defaultGrowthMonths = 12
	maxGrowthMonths     = 36
)

// PageResult is one page of the user directory plus pagination math.
type PageResult struct {
	Users      []entity.User `json:"users"`
	Total      int64         `json:"total"`
	Page       int           `json:"page"`
	PerPage    int           `json:"per_page"`
	TotalPages int64         `json:"total_pages"`
}

// Search runs a filtered, paginated directory query: case-insensitive
// substring match over full_name and email, exact-match AND-combined
// filters, newest first. Pagination is 1-indexed and per_page is bounded
// to [1,100].
func (s *Service) Search(ctx context.Context, actor *entity.User, f repo.SearchFilter) (*PageResult, error) {
	if !policy.Allow(actor.Role, policy.ActionList, false) {
		return nil, ErrForbidden
	}
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PerPage < 1 {
		f.PerPage = defaultPerPage
	}
	if f.PerPage > maxPerPage {
		f.PerPage = maxPerPage
	}

	users, total, err := s.Repo.Search(ctx, f)
	if err != nil {
		return nil, err
	}
	pages := total / int64(f.PerPage)
	if total%int64(f.PerPage) != 0 {
		pages++
	}
	return &PageResult{
		Users:      users,
		Total:      total,
		Page:       f.Page,
		PerPage:    f.PerPage,
		TotalPages: pages,
	}, nil
}

// Stats returns aggregate user counts for the dashboard.
func (s *Service) Stats(ctx context.Context, actor *entity.User) (*repo.Stats, error) {
	if !policy.Allow(actor.Role, policy.ActionList, false) {
		return nil, ErrForbidden
	}
	return s.Repo.Stats(ctx)
}

// Growth returns per-calendar-month signup counts over a trailing window.
func (s *Service) Growth(ctx context.Context, actor *entity.User, months int) ([]repo.MonthlyCount, error) {
	if !policy.Allow(actor.Role, policy.ActionList, false) {
		return nil, ErrForbidden
	}
	if months < 1 {
		months = defaultGrowthMonths
	}
	if months > maxGrowthMonths {
		months = maxGrowthMonths
	}
	return s.Repo.Growth(ctx, months)
}
