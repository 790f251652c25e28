package services

import (
	"context"
	"testing"

	"embruns/internal/db"
	"embruns/internal/models"
	"embruns/internal/store"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMenu(t *testing.T) *MenuService {
	t.Helper()
	repo := store.NewMemoryMenuRepository()
	require.NoError(t, repo.Seed(context.Background(), db.SeedMenu()))
	return NewMenuService(repo, zerolog.Nop())
}

func itemNames(c models.MenuCategory) []string {
	names := make([]string, len(c.Items))
	for i, item := range c.Items {
		names[i] = item.Name
	}
	return names
}

func findCategory(t *testing.T, menu []models.MenuCategory, id string) models.MenuCategory {
	t.Helper()
	for _, c := range menu {
		if c.ID == id {
			return c
		}
	}
	t.Fatalf("category %q not found", id)
	return models.MenuCategory{}
}

func TestPublicMenuHidesHiddenCategories(t *testing.T) {
	svc := newTestMenu(t)
	ctx := context.Background()

	admin, err := svc.AdminMenu(ctx)
	require.NoError(t, err)
	desserts := findCategory(t, admin, "desserts")

	hidden := true
	require.NoError(t, svc.ReplaceCategory(ctx, "desserts", models.MenuCategoryUpdate{
		Name:   desserts.Name,
		Hidden: &hidden,
		Items:  desserts.Items,
	}))

	public, err := svc.PublicMenu(ctx)
	require.NoError(t, err)
	assert.Len(t, public, len(admin)-1)
	for _, c := range public {
		assert.NotEqual(t, "desserts", c.ID)
	}

	admin, err = svc.AdminMenu(ctx)
	require.NoError(t, err)
	assert.True(t, findCategory(t, admin, "desserts").Hidden)
}

func TestAddItemAssignsID(t *testing.T) {
	svc := newTestMenu(t)
	ctx := context.Background()

	item, err := svc.AddItem(ctx, "plats", models.MenuItemInput{Name: "Cotriade", Description: "Soupe de poissons", Price: "24€"})
	require.NoError(t, err)
	assert.NotEmpty(t, item.ID)

	menu, err := svc.AdminMenu(ctx)
	require.NoError(t, err)
	plats := findCategory(t, menu, "plats")
	assert.Equal(t, *item, plats.Items[len(plats.Items)-1])

	_, err = svc.AddItem(ctx, "nope", models.MenuItemInput{Name: "x", Description: "y", Price: "1€"})
	assert.ErrorIs(t, err, ErrCategoryNotFound)
}

func TestPatchItem(t *testing.T) {
	svc := newTestMenu(t)
	ctx := context.Background()

	item, err := svc.AddItem(ctx, "entrees", models.MenuItemInput{Name: "Huîtres", Description: "Six creuses", Price: "15€"})
	require.NoError(t, err)

	updated, err := svc.PatchItem(ctx, "entrees", item.ID, models.MenuItemPatch{Price: strPtr("16€")})
	require.NoError(t, err)
	assert.Equal(t, item.ID, updated.ID)
	assert.Equal(t, "Huîtres", updated.Name)
	assert.Equal(t, "16€", updated.Price)

	cleared, err := svc.PatchItem(ctx, "entrees", item.ID, models.MenuItemPatch{Description: strPtr("")})
	require.NoError(t, err)
	assert.Empty(t, cleared.Description)
	assert.Equal(t, "16€", cleared.Price)

	_, err = svc.PatchItem(ctx, "entrees", item.ID, models.MenuItemPatch{})
	assert.ErrorIs(t, err, ErrEmptyPatch)

	_, err = svc.PatchItem(ctx, "entrees", "missing", models.MenuItemPatch{Name: strPtr("x")})
	assert.ErrorIs(t, err, ErrItemNotFound)
}

func TestDeleteItemByIDThenIndex(t *testing.T) {
	svc := newTestMenu(t)
	ctx := context.Background()

	added, err := svc.AddItem(ctx, "desserts", models.MenuItemInput{Name: "Far breton", Description: "Aux pruneaux", Price: "9€"})
	require.NoError(t, err)

	menu, err := svc.AdminMenu(ctx)
	require.NoError(t, err)
	before := itemNames(findCategory(t, menu, "desserts"))

	require.NoError(t, svc.DeleteItem(ctx, "desserts", added.ID))
	menu, err = svc.AdminMenu(ctx)
	require.NoError(t, err)
	assert.Equal(t, before[:len(before)-1], itemNames(findCategory(t, menu, "desserts")))

	require.NoError(t, svc.DeleteItem(ctx, "desserts", "0"))
	menu, err = svc.AdminMenu(ctx)
	require.NoError(t, err)
	assert.Equal(t, before[1:len(before)-1], itemNames(findCategory(t, menu, "desserts")))
}

func TestDeleteItemUnknownRef(t *testing.T) {
	svc := newTestMenu(t)
	ctx := context.Background()

	tests := []struct {
		category, ref string
		want          error
	}{
		{"desserts", "not-an-id", ErrItemNotFound},
		{"desserts", "99", ErrItemNotFound},
		{"desserts", "-1", ErrItemNotFound},
		{"nope", "0", ErrCategoryNotFound},
	}
	for _, tt := range tests {
		err := svc.DeleteItem(ctx, tt.category, tt.ref)
		assert.ErrorIs(t, err, tt.want, "%s/%s", tt.category, tt.ref)
	}
}

func TestReplaceCategoryKeepsItemIdentity(t *testing.T) {
	svc := newTestMenu(t)
	ctx := context.Background()

	added, err := svc.AddItem(ctx, "plats", models.MenuItemInput{Name: "Kig ha farz", Description: "Pot-au-feu", Price: "22€"})
	require.NoError(t, err)

	menu, err := svc.AdminMenu(ctx)
	require.NoError(t, err)
	plats := findCategory(t, menu, "plats")

	items := plats.Clone().Items
	items[0].Name = "Renamed"
	require.NoError(t, svc.ReplaceCategory(ctx, "plats", models.MenuCategoryUpdate{Name: "Plats du jour", Items: items}))

	menu, err = svc.AdminMenu(ctx)
	require.NoError(t, err)
	got := findCategory(t, menu, "plats")
	assert.Equal(t, "Plats du jour", got.Name)
	assert.Equal(t, "Renamed", got.Items[0].Name)
	assert.False(t, got.Items[0].HasID())
	assert.Equal(t, added.ID, got.Items[len(got.Items)-1].ID)

	err = svc.ReplaceCategory(ctx, "nope", models.MenuCategoryUpdate{Name: "x"})
	assert.ErrorIs(t, err, ErrCategoryNotFound)
}

func strPtr(s string) *string {
	return &s
}
