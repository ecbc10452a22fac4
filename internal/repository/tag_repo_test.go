package repository

import (
	"context"
	"testing"

	"foodgram/internal/domain"
	"foodgram/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTagRepository(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewTagRepository(db)
	ctx := context.Background()

	lunch := &domain.Tag{Name: "Lunch", Color: "#49B64E", Slug: "lunch"}
	breakfast := &domain.Tag{Name: "Breakfast", Color: "#E26C2D", Slug: "breakfast"}
	require.NoError(t, repo.Create(ctx, lunch))
	require.NoError(t, repo.Create(ctx, breakfast))

	assert.ErrorIs(t, repo.Create(ctx, &domain.Tag{Name: "Again", Color: "#000000", Slug: "lunch"}), ErrDuplicate)

	tags, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, tags, 2)
	assert.Equal(t, "Breakfast", tags[0].Name)

	found, err := repo.FindByIDs(ctx, []int64{lunch.ID, 404})
	require.NoError(t, err)
	require.Len(t, found, 1)

	lunch.Name = "Late lunch"
	require.NoError(t, repo.Update(ctx, lunch))
	got, err := repo.GetByID(ctx, lunch.ID)
	require.NoError(t, err)
	assert.Equal(t, "Late lunch", got.Name)

	breakfast.Slug = "lunch"
	assert.ErrorIs(t, repo.Update(ctx, breakfast), ErrDuplicate)

	author := testutil.CreateUser(t, db, "author")
	testutil.CreateRecipe(t, db, author, "Sandwich", []*domain.Tag{lunch}, nil)

	require.NoError(t, repo.Delete(ctx, lunch.ID))
	var links int64
	require.NoError(t, db.Table("recipe_tags").Count(&links).Error)
	assert.Zero(t, links)

	assert.ErrorIs(t, repo.Delete(ctx, lunch.ID), ErrNotFound)
	_, err = repo.GetByID(ctx, lunch.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
