// Package testutil содержит общие фикстуры для тестов на in-memory SQLite.
package testutil

import (
	"fmt"
	"testing"

	"foodgram/internal/database"
	"foodgram/internal/domain"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// NewDB открывает чистую in-memory базу с применённой схемой.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := database.Connect(":memory:")
	require.NoError(t, err, "failed to connect to test database")
	require.NoError(t, database.Migrate(db), "failed to migrate test database")

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func CreateUser(t *testing.T, db *gorm.DB, username string) *domain.User {
	t.Helper()
	u := &domain.User{
		Email:        username + "@example.com",
		Username:     username,
		FirstName:    "First " + username,
		LastName:     "Last " + username,
		PasswordHash: "x",
		Role:         domain.RoleUser,
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

func CreateAdmin(t *testing.T, db *gorm.DB, username string) *domain.User {
	t.Helper()
	u := CreateUser(t, db, username)
	require.NoError(t, db.Model(u).Update("role", domain.RoleAdmin).Error)
	u.Role = domain.RoleAdmin
	return u
}

func CreateTag(t *testing.T, db *gorm.DB, slug string) *domain.Tag {
	t.Helper()
	tag := &domain.Tag{Name: "Tag " + slug, Color: "#E26C2D", Slug: slug}
	require.NoError(t, db.Create(tag).Error)
	return tag
}

func CreateIngredient(t *testing.T, db *gorm.DB, name, unit string) *domain.Ingredient {
	t.Helper()
	ing := &domain.Ingredient{Name: name, MeasurementUnit: unit}
	require.NoError(t, db.Create(ing).Error)
	return ing
}

// CreateRecipe создаёт рецепт автора с тегами и ингредиентами (ingredientID -> amount).
func CreateRecipe(t *testing.T, db *gorm.DB, author *domain.User, name string, tags []*domain.Tag, amounts map[int64]int) *domain.Recipe {
	t.Helper()

	r := &domain.Recipe{
		AuthorID:    &author.ID,
		Name:        name,
		Text:        fmt.Sprintf("How to cook %s", name),
		CookingTime: 10,
		Image:       "/media/recipes/" + name + ".png",
	}
	require.NoError(t, db.Omit("Author", "Tags", "Ingredients").Create(r).Error)

	for _, tag := range tags {
		require.NoError(t, db.Exec("INSERT INTO recipe_tags (recipe_id, tag_id) VALUES (?, ?)", r.ID, tag.ID).Error)
	}
	for ingID, amount := range amounts {
		row := &domain.RecipeIngredient{RecipeID: r.ID, IngredientID: ingID, Amount: amount}
		require.NoError(t, db.Omit("Ingredient").Create(row).Error)
	}
	return r
}
