package application

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-user-accounts/internal/domain/entity"
	repo "github.com/oksasatya/go-user-accounts/internal/domain/repository"
)

func seedDirectory(t *testing.T, r *fakeRepo, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		seedUser(t, r, fmt.Sprintf("member%02d@b.com", i), entity.RoleUser, i%2 == 0, true)
	}
}

func TestSearchPolicy(t *testing.T) {
	svc, r, _ := newTestService(t)
	ctx := context.Background()
	admin := seedUser(t, r, "admin@b.com", entity.RoleAdmin, true, true)
	editor := seedUser(t, r, "editor@b.com", entity.RoleEditor, true, true)
	user := seedUser(t, r, "user@b.com", entity.RoleUser, true, true)

	_, err := svc.Search(ctx, admin, repo.SearchFilter{})
	require.NoError(t, err)
	_, err = svc.Search(ctx, editor, repo.SearchFilter{})
	require.NoError(t, err)
	_, err = svc.Search(ctx, user, repo.SearchFilter{})
	require.ErrorIs(t, err, ErrForbidden)
}

func TestSearchPaginationBounds(t *testing.T) {
	svc, r, _ := newTestService(t)
	ctx := context.Background()
	admin := seedUser(t, r, "admin@b.com", entity.RoleAdmin, true, true)
	seedDirectory(t, r, 25)

	// Zero values fall back to page 1, per_page 10.
	page, err := svc.Search(ctx, admin, repo.SearchFilter{})
	require.NoError(t, err)
	require.Equal(t, 1, page.Page)
	require.Equal(t, 10, page.PerPage)
	require.EqualValues(t, 26, page.Total)
	require.EqualValues(t, 3, page.TotalPages)
	require.Len(t, page.Users, 10)

	// per_page is capped at 100.
	page, err = svc.Search(ctx, admin, repo.SearchFilter{Page: 1, PerPage: 1000})
	require.NoError(t, err)
	require.Equal(t, 100, page.PerPage)
	require.Len(t, page.Users, 26)

	// A page past the end is empty but keeps the totals.
	page, err = svc.Search(ctx, admin, repo.SearchFilter{Page: 9, PerPage: 10})
	require.NoError(t, err)
	require.Empty(t, page.Users)
	require.EqualValues(t, 26, page.Total)
}

func TestSearchFilters(t *testing.T) {
	svc, r, _ := newTestService(t)
	ctx := context.Background()
	admin := seedUser(t, r, "admin@b.com", entity.RoleAdmin, true, true)
	seedUser(t, r, "carol@b.com", entity.RoleEditor, true, true)
	seedUser(t, r, "dave@b.com", entity.RoleUser, false, false)

	role := entity.RoleEditor
	page, err := svc.Search(ctx, admin, repo.SearchFilter{Role: &role})
	require.NoError(t, err)
	require.Len(t, page.Users, 1)
	require.Equal(t, "carol@b.com", page.Users[0].Email)

	active := false
	page, err = svc.Search(ctx, admin, repo.SearchFilter{IsActive: &active})
	require.NoError(t, err)
	require.Len(t, page.Users, 1)
	require.Equal(t, "dave@b.com", page.Users[0].Email)

	page, err = svc.Search(ctx, admin, repo.SearchFilter{Text: "CAROL"})
	require.NoError(t, err)
	require.Len(t, page.Users, 1)

	// Newest first.
	page, err = svc.Search(ctx, admin, repo.SearchFilter{})
	require.NoError(t, err)
	require.Equal(t, "dave@b.com", page.Users[0].Email)
}

func TestStatsPolicyAndCounts(t *testing.T) {
	svc, r, _ := newTestService(t)
	ctx := context.Background()
	admin := seedUser(t, r, "admin@b.com", entity.RoleAdmin, true, true)
	user := seedUser(t, r, "user@b.com", entity.RoleUser, true, false)
	seedUser(t, r, "off@b.com", entity.RoleUser, false, false)

	st, err := svc.Stats(ctx, admin)
	require.NoError(t, err)
	require.EqualValues(t, 3, st.Total)
	require.EqualValues(t, 2, st.Active)
	require.EqualValues(t, 1, st.Verified)
	require.EqualValues(t, 1, st.ByRole[entity.RoleAdmin])
	require.EqualValues(t, 0, st.ByRole[entity.RoleEditor])
	require.EqualValues(t, 2, st.ByRole[entity.RoleUser])

	_, err = svc.Stats(ctx, user)
	require.ErrorIs(t, err, ErrForbidden)
}

func TestGrowthBounds(t *testing.T) {
	svc, r, _ := newTestService(t)
	ctx := context.Background()
	admin := seedUser(t, r, "admin@b.com", entity.RoleAdmin, true, true)
	seedDirectory(t, r, 3)

	counts, err := svc.Growth(ctx, admin, 0)
	require.NoError(t, err)
	require.NotEmpty(t, counts)

	counts, err = svc.Growth(ctx, admin, 1000)
	require.NoError(t, err)
	require.NotEmpty(t, counts)

	user := seedUser(t, r, "user@b.com", entity.RoleUser, true, true)
	_, err = svc.Growth(ctx, user, 12)
	require.ErrorIs(t, err, ErrForbidden)
}
