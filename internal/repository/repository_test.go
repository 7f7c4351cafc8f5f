package repository

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/athujoshi24/legendary-panel/internal/models"
	"github.com/athujoshi24/legendary-panel/internal/testutil"
	appErr "github.com/athujoshi24/legendary-panel/pkg/errors"
	"github.com/athujoshi24/legendary-panel/pkg/logger"
)

func TestMain(m *testing.M) {
	logger.UseNop()
	os.Exit(m.Run())
}

type fixture struct {
	ctx         context.Context
	db          *gorm.DB
	users       UserRepository
	tags        AttributeRepository[models.Tag]
	ingredients AttributeRepository[models.Ingredient]
	recipes     RecipeRepository
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewDB(t)
	return &fixture{
		ctx:         context.Background(),
		db:          db,
		users:       NewUserRepository(db),
		tags:        NewTagRepository(db),
		ingredients: NewIngredientRepository(db),
		recipes:     NewRecipeRepository(db),
	}
}

func (f *fixture) user(t *testing.T, email string) *models.User {
	t.Helper()
	u := &models.User{Email: email}
	require.NoError(t, f.users.Create(f.ctx, u))
	return u
}

func (f *fixture) tag(t *testing.T, owner uint, name string) models.Tag {
	t.Helper()
	tag := models.NewAttribute[models.Tag](owner, name)
	require.NoError(t, f.tags.Create(f.ctx, &tag))
	return tag
}

func (f *fixture) ingredient(t *testing.T, owner uint, name string) models.Ingredient {
	t.Helper()
	in := models.NewAttribute[models.Ingredient](owner, name)
	require.NoError(t, f.ingredients.Create(f.ctx, &in))
	return in
}

func (f *fixture) recipe(t *testing.T, owner uint, title string, tags []models.Tag, ingredients []models.Ingredient) *models.Recipe {
	t.Helper()
	r := &models.Recipe{UserID: owner, Title: title, Type: models.CategoryVeg}
	require.NoError(t, f.recipes.CreateWithLinks(f.ctx, r, RecipeLinks{Tags: &tags, Ingredients: &ingredients}))
	return r
}

func tagNames(tags []models.Tag) []string {
	out := make([]string, len(tags))
	for i, t := range tags {
		out[i] = t.Name
	}
	return out
}

func recipeTitles(rs []models.Recipe) []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = r.Title
	}
	return out
}

func TestUserCreateDuplicateEmail(t *testing.T) {
	f := newFixture(t)
	f.user(t, "a@example.com")

	err := f.users.Create(f.ctx, &models.User{Email: "a@example.com"})
	require.Error(t, err)
	assert.True(t, appErr.IsCode(err, appErr.CodeAlreadyExists))

	var ae *appErr.AppError
	require.ErrorAs(t, err, &ae)
	assert.Contains(t, ae.Fields(), "email")
}

func TestUserGetByEmail(t *testing.T) {
	f := newFixture(t)
	u := f.user(t, "a@example.com")

	var got models.User
	require.NoError(t, f.users.GetByEmail(f.ctx, "a@example.com", &got))
	assert.Equal(t, u.ID, got.ID)
	assert.True(t, got.IsActive)

	err := f.users.GetByEmail(f.ctx, "missing@example.com", &got)
	assert.True(t, appErr.IsCode(err, appErr.CodeNotFound))
}

func TestAttributeListIsOwnerScopedAndOrdered(t *testing.T) {
	f := newFixture(t)
	a := f.user(t, "a@example.com")
	b := f.user(t, "b@example.com")

	f.tag(t, a.ID, "Vegan")
	f.tag(t, b.ID, "Dessert")
	f.tag(t, a.ID, "Breakfast")

	got, err := f.tags.ListByOwner(f.ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Vegan", "Breakfast"}, tagNames(got))

	empty, err := f.ingredients.ListByOwner(f.ctx, a.ID)
	require.NoError(t, err)
	assert.Empty(t, empty)
	assert.NotNil(t, empty)
}

func TestAttributeFindByNames(t *testing.T) {
	f := newFixture(t)
	a := f.user(t, "a@example.com")
	b := f.user(t, "b@example.com")

	first := f.tag(t, a.ID, "Vegan")
	f.tag(t, a.ID, "Vegan")
	f.tag(t, b.ID, "Spicy")

	got, err := f.tags.FindByNames(f.ctx, a.ID, []string{"Vegan", "Spicy"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, first.ID, got[0].ID)

	none, err := f.tags.FindByNames(f.ctx, a.ID, nil)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestRecipeCreateWithLinksRoundTrip(t *testing.T) {
	f := newFixture(t)
	a := f.user(t, "a@example.com")
	vegan := f.tag(t, a.ID, "Vegan")
	quick := f.tag(t, a.ID, "Quick")
	rice := f.ingredient(t, a.ID, "Rice")

	r := f.recipe(t, a.ID, "Rice Bowl", []models.Tag{quick, vegan}, []models.Ingredient{rice})
	require.NotZero(t, r.ID)
	assert.False(t, r.CreatedAt.IsZero())
	assert.Equal(t, []string{"Vegan", "Quick"}, tagNames(r.Tags))
	require.Len(t, r.Ingredients, 1)
	assert.Equal(t, "Rice", r.Ingredients[0].Name)

	var got models.Recipe
	require.NoError(t, f.recipes.GetByOwner(f.ctx, a.ID, r.ID, &got))
	assert.ElementsMatch(t, []string{"Vegan", "Quick"}, tagNames(got.Tags))
}

func TestRecipeGetByOwnerHidesForeignRecipes(t *testing.T) {
	f := newFixture(t)
	a := f.user(t, "a@example.com")
	b := f.user(t, "b@example.com")
	r := f.recipe(t, a.ID, "Soup", nil, nil)

	var got models.Recipe
	err := f.recipes.GetByOwner(f.ctx, b.ID, r.ID, &got)
	assert.True(t, appErr.IsCode(err, appErr.CodeNotFound))

	err = f.recipes.GetByOwner(f.ctx, a.ID, r.ID+100, &got)
	assert.True(t, appErr.IsCode(err, appErr.CodeNotFound))
}

func TestRecipeUpdateWithLinks(t *testing.T) {
	f := newFixture(t)
	a := f.user(t, "a@example.com")
	vegan := f.tag(t, a.ID, "Vegan")
	quick := f.tag(t, a.ID, "Quick")
	rice := f.ingredient(t, a.ID, "Rice")
	r := f.recipe(t, a.ID, "Rice Bowl", []models.Tag{vegan}, []models.Ingredient{rice})
	created := r.CreatedAt

	t.Run("columns and tags", func(t *testing.T) {
		upd := &models.Recipe{ID: r.ID, UserID: a.ID, Title: "Big Rice Bowl"}
		tags := []models.Tag{quick}
		require.NoError(t, f.recipes.UpdateWithLinks(f.ctx, upd, []string{"title"}, RecipeLinks{Tags: &tags}))

		assert.Equal(t, "Big Rice Bowl", upd.Title)
		assert.Equal(t, models.CategoryVeg, upd.Type)
		assert.Equal(t, []string{"Quick"}, tagNames(upd.Tags))
		require.Len(t, upd.Ingredients, 1)
		assert.True(t, created.Equal(upd.CreatedAt))
	})

	t.Run("empty list clears", func(t *testing.T) {
		upd := &models.Recipe{ID: r.ID, UserID: a.ID}
		require.NoError(t, f.recipes.UpdateWithLinks(f.ctx, upd, nil, RecipeLinks{
			Tags:        &[]models.Tag{},
			Ingredients: &[]models.Ingredient{},
		}))
		assert.Empty(t, upd.Tags)
		assert.Empty(t, upd.Ingredients)
		assert.Equal(t, "Big Rice Bowl", upd.Title)
	})
}

func TestRecipeUpdateWithLinksMissingRecipe(t *testing.T) {
	f := newFixture(t)
	a := f.user(t, "a@example.com")
	vegan := f.tag(t, a.ID, "Vegan")
	r := f.recipe(t, a.ID, "Soup", nil, nil)
	require.NoError(t, f.recipes.DeleteByOwner(f.ctx, a.ID, r.ID))

	tags := []models.Tag{vegan}
	upd := &models.Recipe{ID: r.ID, UserID: a.ID, Title: "Stew"}
	err := f.recipes.UpdateWithLinks(f.ctx, upd, []string{"title"}, RecipeLinks{Tags: &tags})
	assert.True(t, appErr.IsCode(err, appErr.CodeNotFound))

	err = f.recipes.UpdateWithLinks(f.ctx, &models.Recipe{ID: r.ID, UserID: a.ID}, nil, RecipeLinks{Tags: &tags})
	assert.True(t, appErr.IsCode(err, appErr.CodeNotFound))

	var links int64
	require.NoError(t, f.db.Table("recipe_tags").Count(&links).Error)
	assert.Zero(t, links)
}

func TestRecipeWritesRollBackOnLinkFailure(t *testing.T) {
	f := newFixture(t)
	a := f.user(t, "a@example.com")
	vegan := f.tag(t, a.ID, "Vegan")
	quick := f.tag(t, a.ID, "Quick")
	rice := f.ingredient(t, a.ID, "Rice")
	r := f.recipe(t, a.ID, "Rice Bowl", []models.Tag{vegan}, nil)

	require.NoError(t, f.db.Migrator().DropTable("recipe_ingredients"))

	titleOf := func(id uint) string {
		var titles []string
		require.NoError(t, f.db.Model(&models.Recipe{}).Where("id = ?", id).Pluck("title", &titles).Error)
		require.Len(t, titles, 1)
		return titles[0]
	}
	tagIDs := func(id uint) []uint {
		var ids []uint
		require.NoError(t, f.db.Table("recipe_tags").Where("recipe_id = ?", id).Order("tag_id").Pluck("tag_id", &ids).Error)
		return ids
	}

	t.Run("update", func(t *testing.T) {
		tags := []models.Tag{quick}
		ingredients := []models.Ingredient{rice}
		upd := &models.Recipe{ID: r.ID, UserID: a.ID, Title: "Changed"}
		err := f.recipes.UpdateWithLinks(f.ctx, upd, []string{"title"}, RecipeLinks{Tags: &tags, Ingredients: &ingredients})
		require.Error(t, err)

		assert.Equal(t, "Rice Bowl", titleOf(r.ID))
		assert.Equal(t, []uint{vegan.ID}, tagIDs(r.ID))
	})

	t.Run("create", func(t *testing.T) {
		tags := []models.Tag{quick}
		ingredients := []models.Ingredient{rice}
		fresh := &models.Recipe{UserID: a.ID, Title: "Orphan", Type: models.CategoryVeg}
		err := f.recipes.CreateWithLinks(f.ctx, fresh, RecipeLinks{Tags: &tags, Ingredients: &ingredients})
		require.Error(t, err)

		var count int64
		require.NoError(t, f.db.Model(&models.Recipe{}).Count(&count).Error)
		assert.EqualValues(t, 1, count)
		var links int64
		require.NoError(t, f.db.Table("recipe_tags").Count(&links).Error)
		assert.EqualValues(t, 1, links)
	})
}

func TestRecipeListFilters(t *testing.T) {
	f := newFixture(t)
	a := f.user(t, "a@example.com")
	b := f.user(t, "b@example.com")

	x := f.tag(t, a.ID, "X")
	y := f.tag(t, a.ID, "Y")
	z := f.tag(t, a.ID, "Z")
	rice := f.ingredient(t, a.ID, "Rice")
	beans := f.ingredient(t, a.ID, "Beans")
	bx := f.tag(t, b.ID, "X")

	f.recipe(t, a.ID, "xy", []models.Tag{x, y}, []models.Ingredient{rice})
	f.recipe(t, a.ID, "y", []models.Tag{y}, []models.Ingredient{beans})
	f.recipe(t, a.ID, "z", []models.Tag{z}, []models.Ingredient{rice, beans})
	f.recipe(t, a.ID, "none", nil, nil)
	f.recipe(t, b.ID, "foreign", []models.Tag{bx}, nil)

	cases := []struct {
		name   string
		filter RecipeFilter
		want   []string
	}{
		{"no filter", RecipeFilter{}, []string{"xy", "y", "z", "none"}},
		{"tag union without duplicates", RecipeFilter{TagNames: []string{"X", "Y"}}, []string{"xy", "y"}},
		{"ingredient", RecipeFilter{IngredientNames: []string{"Rice"}}, []string{"xy", "z"}},
		{"tags and ingredients", RecipeFilter{TagNames: []string{"Y", "Z"}, IngredientNames: []string{"Beans"}}, []string{"y", "z"}},
		{"unknown name", RecipeFilter{TagNames: []string{"nope"}}, []string{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := f.recipes.List(f.ctx, a.ID, tc.filter)
			require.NoError(t, err)
			assert.Equal(t, tc.want, recipeTitles(got))
		})
	}
}

func TestRecipeDeleteByOwner(t *testing.T) {
	f := newFixture(t)
	a := f.user(t, "a@example.com")
	b := f.user(t, "b@example.com")
	vegan := f.tag(t, a.ID, "Vegan")
	r := f.recipe(t, a.ID, "Soup", []models.Tag{vegan}, nil)

	err := f.recipes.DeleteByOwner(f.ctx, b.ID, r.ID)
	assert.True(t, appErr.IsCode(err, appErr.CodeNotFound))

	require.NoError(t, f.recipes.DeleteByOwner(f.ctx, a.ID, r.ID))

	var links int64
	require.NoError(t, f.db.Table("recipe_tags").Count(&links).Error)
	assert.Zero(t, links)

	tags, err := f.tags.ListByOwner(f.ctx, a.ID)
	require.NoError(t, err)
	assert.Len(t, tags, 1)
}

func TestUserDeleteCascade(t *testing.T) {
	f := newFixture(t)
	a := f.user(t, "a@example.com")
	b := f.user(t, "b@example.com")

	f.recipe(t, a.ID, "a1", []models.Tag{f.tag(t, a.ID, "T")}, []models.Ingredient{f.ingredient(t, a.ID, "I")})
	keep := f.recipe(t, b.ID, "b1", []models.Tag{f.tag(t, b.ID, "T")}, []models.Ingredient{f.ingredient(t, b.ID, "I")})

	require.NoError(t, f.users.DeleteCascade(f.ctx, a.ID))

	for _, model := range []any{&models.Recipe{}, &models.Tag{}, &models.Ingredient{}} {
		var n int64
		require.NoError(t, f.db.Model(model).Where("user_id = ?", a.ID).Count(&n).Error)
		assert.Zero(t, n)
	}

	var got models.Recipe
	require.NoError(t, f.recipes.GetByOwner(f.ctx, b.ID, keep.ID, &got))
	assert.Len(t, got.Tags, 1)
	assert.Len(t, got.Ingredients, 1)

	err := f.users.DeleteCascade(f.ctx, a.ID)
	assert.True(t, appErr.IsCode(err, appErr.CodeNotFound))
}
