package kb

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openhelpdesk/helpdesk/internal/application/access"
	"github.com/openhelpdesk/helpdesk/internal/application/kb/dto"
	domainkb "github.com/openhelpdesk/helpdesk/internal/domain/kb"
	"github.com/openhelpdesk/helpdesk/internal/interfaces/http/handlers/testutil"
	"github.com/openhelpdesk/helpdesk/internal/shared/errors"
)

type mockBrowser struct {
	slug      string
	direction string
	voter     access.Actor
}

func (m *mockBrowser) ListCategories(context.Context, access.Actor) ([]*dto.CategoryDTO, error) {
	return []*dto.CategoryDTO{{ID: 1, Slug: "printers"}}, nil
}

func (m *mockBrowser) GetCategory(_ context.Context, _ access.Actor, slug string) (*dto.CategoryDTO, error) {
	m.slug = slug
	if slug != "printers" {
		return nil, errors.NewNotFoundError("category not found")
	}
	return &dto.CategoryDTO{ID: 1, Slug: slug}, nil
}

func (m *mockBrowser) GetItem(_ context.Context, _ access.Actor, id uint) (*dto.ItemDTO, error) {
	return &dto.ItemDTO{ID: id}, nil
}

func (m *mockBrowser) Vote(_ context.Context, actor access.Actor, id uint, direction string) (*dto.ItemDTO, error) {
	m.direction = direction
	m.voter = actor
	if !actor.IsAuthenticated() {
		return nil, errors.NewUnauthorizedError("login required to vote")
	}
	return &dto.ItemDTO{ID: id, Votes: 1, Recommendations: 1}, nil
}

type mockManager struct {
	item domainkb.ItemContent
}

func (m *mockManager) CreateCategory(_ context.Context, _ access.Actor, s domainkb.CategorySettings) (*dto.CategoryDTO, error) {
	return &dto.CategoryDTO{ID: 5, Name: s.Name}, nil
}

func (m *mockManager) UpdateCategory(_ context.Context, _ access.Actor, id uint, s domainkb.CategorySettings) (*dto.CategoryDTO, error) {
	return &dto.CategoryDTO{ID: id, Name: s.Name}, nil
}

func (m *mockManager) DeleteCategory(context.Context, access.Actor, uint) error { return nil }

func (m *mockManager) CreateItem(_ context.Context, _ access.Actor, c domainkb.ItemContent) (*dto.ItemDTO, error) {
	m.item = c
	return &dto.ItemDTO{ID: 9, Title: c.Title}, nil
}

func (m *mockManager) UpdateItem(_ context.Context, _ access.Actor, id uint, c domainkb.ItemContent) (*dto.ItemDTO, error) {
	m.item = c
	return &dto.ItemDTO{ID: id}, nil
}

func (m *mockManager) DeleteItem(context.Context, access.Actor, uint) error { return nil }

func TestGetCategory(t *testing.T) {
	b := &mockBrowser{}
	h := NewHandler(b, &mockManager{}, testutil.NewMockLogger())

	c, w := testutil.NewTestContext(http.MethodGet, "/kb/printers", nil)
	testutil.SetURLParam(c, RefParam, "printers")
	h.GetCategory(c)
	assert.Equal(t, http.StatusOK, w.Code)

	c, w = testutil.NewTestContext(http.MethodGet, "/kb/missing", nil)
	testutil.SetURLParam(c, RefParam, "missing")
	h.GetCategory(c)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestVote_RequiresLogin(t *testing.T) {
	b := &mockBrowser{}
	h := NewHandler(b, &mockManager{}, testutil.NewMockLogger())

	c, w := testutil.NewTestContext(http.MethodPost, "/kb/3/vote/up", nil)
	testutil.SetURLParam(c, RefParam, "3")
	testutil.SetURLParam(c, "direction", "up")
	h.Vote(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestVote(t *testing.T) {
	b := &mockBrowser{}
	h := NewHandler(b, &mockManager{}, testutil.NewMockLogger())

	c, w := testutil.NewTestContext(http.MethodPost, "/kb/3/vote/down", nil)
	testutil.SetURLParam(c, RefParam, "3")
	testutil.SetURLParam(c, "direction", "down")
	testutil.SetAuthContext(c, 7, "u@example.com")
	h.Vote(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "down", b.direction)
	assert.Equal(t, uint(7), b.voter.UserID)
}

func TestCreateItem_DefaultsToEnabled(t *testing.T) {
	m := &mockManager{}
	h := NewHandler(&mockBrowser{}, m, testutil.NewMockLogger())

	c, w := testutil.NewTestContext(http.MethodPost, "/admin/kb/items", map[string]any{
		"category": 1, "title": "Reset toner", "question": "How?", "answer": "Like *this*",
	})
	testutil.SetStaffContext(c, 1, "staff@example.com")
	h.CreateItem(c)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.True(t, m.item.Enabled)
	assert.Equal(t, "Reset toner", m.item.Title)
}

func TestCreateCategory_Validation(t *testing.T) {
	h := NewHandler(&mockBrowser{}, &mockManager{}, testutil.NewMockLogger())

	c, w := testutil.NewTestContext(http.MethodPost, "/admin/kb/categories", map[string]any{"title": "No name"})
	h.CreateCategory(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
