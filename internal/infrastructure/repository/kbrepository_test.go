package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openhelpdesk/helpdesk/internal/domain/kb"
	db "github.com/openhelpdesk/helpdesk/internal/shared/db"
)

func TestKBRepositories(t *testing.T) {
	database := setupTestDB(t)
	categories := NewKBCategoryRepository(database)
	items := NewKBItemRepository(database)
	ctx := context.Background()

	public, err := kb.NewCategory(kb.CategorySettings{Name: "Getting Started", Title: "Getting Started", Public: true})
	require.NoError(t, err)
	require.NoError(t, categories.Create(ctx, public))
	internal, err := kb.NewCategory(kb.CategorySettings{Name: "Internal", Title: "Internal", Slug: "internal"})
	require.NoError(t, err)
	require.NoError(t, categories.Create(ctx, internal))

	newItem := func(title string, order int, enabled bool) *kb.Item {
		it, err := kb.NewItem(kb.ItemContent{
			CategoryID: public.ID(),
			Title:      title,
			Question:   "How do I " + title + "?",
			Answer:     "Use the **portal**.",
			Order:      order,
			Enabled:    enabled,
		})
		require.NoError(t, err)
		require.NoError(t, items.Create(ctx, it))
		return it
	}
	reset := newItem("reset my password", 2, true)
	login := newItem("log in", 1, true)
	newItem("archived", 0, false)

	t.Run("categories", func(t *testing.T) {
		found, err := categories.GetBySlug(ctx, "GETTING-STARTED")
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, public.ID(), found.ID())

		visible, err := categories.List(ctx, true)
		require.NoError(t, err)
		assert.Len(t, visible, 1)

		all, err := categories.List(ctx, false)
		require.NoError(t, err)
		assert.Len(t, all, 2)
	})

	t.Run("items ordered by order then title", func(t *testing.T) {
		enabled, err := items.ListByCategory(ctx, public.ID(), true)
		require.NoError(t, err)
		require.Len(t, enabled, 2)
		assert.Equal(t, login.ID(), enabled[0].ID())
		assert.Equal(t, reset.ID(), enabled[1].ID())

		all, err := items.ListByCategory(ctx, public.ID(), false)
		require.NoError(t, err)
		require.Len(t, all, 3)
		assert.Equal(t, "archived", all[0].Title())
	})

	t.Run("votes", func(t *testing.T) {
		for _, v := range []struct {
			user uint
			dir  kb.VoteDirection
		}{{10, kb.VoteUp}, {11, kb.VoteUp}, {12, kb.VoteDown}} {
			vc, err := reset.Vote(v.user, v.dir)
			require.NoError(t, err)
			require.NoError(t, items.RecordVote(ctx, reset.ID(), vc))
		}

		found, err := items.GetByID(ctx, reset.ID())
		require.NoError(t, err)
		assert.Equal(t, 3, found.Votes())
		assert.Equal(t, 1, found.Recommendations())
		assert.Equal(t, []uint{10, 11}, found.VotedBy())
		assert.Equal(t, []uint{12}, found.DownvotedBy())

		vc, err := found.Vote(12, kb.VoteUp)
		require.NoError(t, err)
		require.NoError(t, items.RecordVote(ctx, found.ID(), vc))

		likes, dislikes, err := items.VoteTotals(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(3), likes)
		assert.Equal(t, int64(0), dislikes)
	})

	t.Run("update leaves counters alone", func(t *testing.T) {
		c := reset.Content()
		c.Title = "Reset a password"
		require.NoError(t, reset.Update(c))
		require.NoError(t, items.Update(ctx, reset))

		found, err := items.GetByID(ctx, reset.ID())
		require.NoError(t, err)
		assert.Equal(t, "Reset a password", found.Title())
		assert.Equal(t, 3, found.Votes())
	})

	t.Run("category delete cascades", func(t *testing.T) {
		require.NoError(t, categories.Delete(ctx, public.ID()))

		gone, err := items.GetByID(ctx, reset.ID())
		require.NoError(t, err)
		assert.Nil(t, gone)

		likes, _, err := items.VoteTotals(ctx)
		require.NoError(t, err)
		assert.Zero(t, likes)
	})
}

func TestKBItemRepository_VotesFromStaleCopiesAccumulate(t *testing.T) {
	database := setupTestDB(t)
	categories := NewKBCategoryRepository(database)
	items := NewKBItemRepository(database)
	txMgr := db.NewTransactionManager(database)
	ctx := context.Background()

	c, err := kb.NewCategory(kb.CategorySettings{Name: "Network", Title: "Network", Public: true})
	require.NoError(t, err)
	require.NoError(t, categories.Create(ctx, c))
	it, err := kb.NewItem(kb.ItemContent{CategoryID: c.ID(), Title: "wifi", Question: "No wifi?", Answer: "Reboot.", Enabled: true})
	require.NoError(t, err)
	require.NoError(t, items.Create(ctx, it))

	first, err := items.GetByID(ctx, it.ID())
	require.NoError(t, err)
	second, err := items.GetByID(ctx, it.ID())
	require.NoError(t, err)

	vc, err := first.Vote(1, kb.VoteUp)
	require.NoError(t, err)
	require.NoError(t, items.RecordVote(ctx, it.ID(), vc))
	vc, err = second.Vote(2, kb.VoteUp)
	require.NoError(t, err)
	require.NoError(t, items.RecordVote(ctx, it.ID(), vc))

	found, err := items.GetByID(ctx, it.ID())
	require.NoError(t, err)
	assert.Equal(t, 2, found.Votes())
	assert.Equal(t, 2, found.Recommendations())
	assert.Equal(t, []uint{1, 2}, found.VotedBy())

	err = txMgr.RunInTransaction(ctx, func(txCtx context.Context) error {
		locked, err := items.GetByIDForUpdate(txCtx, it.ID())
		require.NoError(t, err)
		require.NotNil(t, locked)
		vc, err := locked.Vote(2, kb.VoteDown)
		require.NoError(t, err)
		return items.RecordVote(txCtx, locked.ID(), vc)
	})
	require.NoError(t, err)

	found, err = items.GetByID(ctx, it.ID())
	require.NoError(t, err)
	assert.Equal(t, 2, found.Votes())
	assert.Equal(t, 1, found.Recommendations())
	assert.Equal(t, []uint{1}, found.VotedBy())
	assert.Equal(t, []uint{2}, found.DownvotedBy())
}
