package repositories

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"motoroutes-api/config"
	"motoroutes-api/database"
	"motoroutes-api/models"
	"motoroutes-api/utils"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := database.Initialize(&config.Config{
		DBDriver:    "sqlite",
		DatabaseURL: ":memory:?_pragma=foreign_keys(1)",
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

type fixture struct {
	t  *testing.T
	db *gorm.DB
}

func (f fixture) user(name string) models.User {
	u := models.User{Username: name, Email: name + "@example.com", Password: "x"}
	require.NoError(f.t, f.db.Create(&u).Error)
	return u
}

func (f fixture) route(creator models.User, title string) models.Route {
	r := models.Route{
		Title:       title,
		Description: "desc",
		Difficulty:  models.DifficultyModerate,
		GeoJSON:     datatypes.JSON(`{"type":"Point","coordinates":[0,0]}`),
		Distance:    10,
		CreatorID:   creator.ID,
	}
	require.NoError(f.t, f.db.Omit("Creator").Create(&r).Error)
	return r
}

func (f fixture) location(creator models.User, route *models.Route) models.Location {
	l := models.Location{Name: "Stop", LocationType: models.LocationViewpoint, CreatorID: creator.ID}
	if route != nil {
		l.RouteID = &route.ID
	}
	require.NoError(f.t, f.db.Omit("Creator").Create(&l).Error)
	return l
}

func (f fixture) image(uploader models.User, routeID, locationID *uint) models.Image {
	i := models.Image{File: "route_images/" + uuid.NewString() + ".png", UploaderID: uploader.ID, RouteID: routeID, LocationID: locationID}
	require.NoError(f.t, f.db.Omit("Uploader").Create(&i).Error)
	return i
}

func (f fixture) comment(author models.User, route models.Route, text string) models.Comment {
	c := models.Comment{Text: text, AuthorID: author.ID, RouteID: route.ID}
	require.NoError(f.t, f.db.Omit("Author").Create(&c).Error)
	return c
}

func (f fixture) count(model interface{}) int64 {
	var n int64
	require.NoError(f.t, f.db.Model(model).Count(&n).Error)
	return n
}

func TestUserDeleteCascades(t *testing.T) {
	db := newTestDB(t)
	f := fixture{t: t, db: db}
	ctx := context.Background()

	owner := f.user("owner")
	other := f.user("other")
	avatar := "avatars/owner.png"
	require.NoError(t, db.Model(&owner).Update("avatar", avatar).Error)

	route := f.route(owner, "Owner route")
	loc := f.location(other, &route)
	onLocation := f.image(other, nil, &loc.ID)
	onRoute := f.image(other, &route.ID, nil)
	f.comment(other, route, "nice")

	otherRoute := f.route(other, "Other route")
	f.comment(owner, otherRoute, "mine")
	f.location(owner, &otherRoute)
	uploaded := f.image(owner, &otherRoute.ID, nil)
	f.comment(other, otherRoute, "theirs")

	refs, err := NewUserRepository(db).Delete(ctx, owner.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{onLocation.File, onRoute.File, uploaded.File, avatar}, refs)

	assert.EqualValues(t, 1, f.count(&models.User{}))
	assert.EqualValues(t, 1, f.count(&models.Route{}))
	assert.EqualValues(t, 0, f.count(&models.Location{}))
	assert.EqualValues(t, 0, f.count(&models.Image{}))
	assert.EqualValues(t, 1, f.count(&models.Comment{}))

	_, err = NewUserRepository(db).Delete(ctx, owner.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRouteDeleteRemovesChildren(t *testing.T) {
	db := newTestDB(t)
	f := fixture{t: t, db: db}
	ctx := context.Background()

	rider := f.user("rider")
	route := f.route(rider, "Doomed")
	keep := f.route(rider, "Keeper")
	loc := f.location(rider, &route)
	onLocation := f.image(rider, nil, &loc.ID)
	onRoute := f.image(rider, &route.ID, nil)
	f.comment(rider, route, "bye")
	unpinned := f.location(rider, nil)
	f.comment(rider, keep, "stay")

	refs, err := NewRouteRepository(db).Delete(ctx, route.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{onLocation.File, onRoute.File}, refs)

	assert.EqualValues(t, 1, f.count(&models.Route{}))
	assert.EqualValues(t, 1, f.count(&models.Location{}))
	assert.EqualValues(t, 0, f.count(&models.Image{}))
	assert.EqualValues(t, 1, f.count(&models.Comment{}))

	_, err = NewLocationRepository(db).FindByID(ctx, unpinned.ID)
	assert.NoError(t, err)
}

func TestLocationDeleteRemovesImages(t *testing.T) {
	db := newTestDB(t)
	f := fixture{t: t, db: db}

	rider := f.user("rider")
	loc := f.location(rider, nil)
	image := f.image(rider, nil, &loc.ID)

	refs, err := NewLocationRepository(db).Delete(context.Background(), loc.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{image.File}, refs)

	assert.EqualValues(t, 0, f.count(&models.Location{}))
	assert.EqualValues(t, 0, f.count(&models.Image{}))
}

func TestCountChildren(t *testing.T) {
	db := newTestDB(t)
	f := fixture{t: t, db: db}

	rider := f.user("rider")
	busy := f.route(rider, "Busy")
	quiet := f.route(rider, "Quiet")
	f.location(rider, &busy)
	f.location(rider, &busy)
	f.image(rider, &busy.ID, nil)
	f.comment(rider, busy, "one")
	f.comment(rider, busy, "two")
	f.comment(rider, busy, "three")

	counts, err := NewRouteRepository(db).CountChildren(context.Background(), []uint{busy.ID, quiet.ID})

	require.NoError(t, err)
	assert.Equal(t, models.RouteCounts{Locations: 2, Images: 1, Comments: 3}, counts[busy.ID])
	assert.Equal(t, models.RouteCounts{}, counts[quiet.ID])
}

func TestRouteListFilters(t *testing.T) {
	db := newTestDB(t)
	f := fixture{t: t, db: db}
	repo := NewRouteRepository(db)
	ctx := context.Background()

	alice := f.user("alice")
	bob := f.user("bob")
	pass := f.route(alice, "Grossglockner Pass")
	f.route(bob, "Coastal cruise")
	lake := f.route(alice, "Lake loop")

	routes, page, err := repo.List(ctx, RouteFilter{CreatorID: alice.ID}, utils.PageRequest{Size: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 2, page.Total)
	require.Len(t, routes, 2)
	assert.Equal(t, lake.ID, routes[0].ID)
	assert.Equal(t, pass.ID, routes[1].ID)
	assert.Equal(t, "alice", routes[0].Creator.Username)

	routes, _, err = repo.List(ctx, RouteFilter{Search: "glockner PASS"}, utils.PageRequest{Size: 10})
	require.NoError(t, err)
	require.Len(t, routes, 1)
	assert.Equal(t, pass.ID, routes[0].ID)

	routes, _, err = repo.List(ctx, RouteFilter{Search: "lake pass"}, utils.PageRequest{Size: 10})
	require.NoError(t, err)
	assert.Empty(t, routes)
}

func TestRouteSearchTreatsWildcardsLiterally(t *testing.T) {
	db := newTestDB(t)
	f := fixture{t: t, db: db}
	repo := NewRouteRepository(db)
	ctx := context.Background()

	rider := f.user("rider")
	tarmac := f.route(rider, "100% Tarmac")
	f.route(rider, "Gravel loop")

	tests := []struct {
		search string
		want   []uint
	}{
		{"%", []uint{tarmac.ID}},
		{"_", nil},
		{"100%", []uint{tarmac.ID}},
		{"1_0", nil},
		{"!", nil},
	}

	for _, tt := range tests {
		t.Run(tt.search, func(t *testing.T) {
			routes, _, err := repo.List(ctx, RouteFilter{Search: tt.search}, utils.PageRequest{Size: 10})
			require.NoError(t, err)

			var ids []uint
			for _, r := range routes {
				ids = append(ids, r.ID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestRouteOrder(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"", "created_at DESC, id DESC"},
		{"bogus", "created_at DESC, id DESC"},
		{"distance", "distance ASC, id DESC"},
		{"-distance,title", "distance DESC, title ASC, id DESC"},
		{" -created_at , password", "created_at DESC, id DESC"},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, routeOrder(tt.raw))
		})
	}
}

func TestCommentListIsOldestFirst(t *testing.T) {
	db := newTestDB(t)
	f := fixture{t: t, db: db}

	rider := f.user("rider")
	route := f.route(rider, "Chatty")
	first := f.comment(rider, route, "first")
	second := f.comment(rider, route, "second")

	comments, _, err := NewCommentRepository(db).List(context.Background(), route.ID, utils.PageRequest{Size: 10})

	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, first.ID, comments[0].ID)
	assert.Equal(t, second.ID, comments[1].ID)
	assert.Equal(t, "rider", comments[0].Author.Username)
}

func TestUserUniquenessIsCaseInsensitiveForEmail(t *testing.T) {
	db := newTestDB(t)
	f := fixture{t: t, db: db}
	repo := NewUserRepository(db)
	ctx := context.Background()

	rider := f.user("rider")

	taken, err := repo.EmailTaken(ctx, "RIDER@example.com", 0)
	require.NoError(t, err)
	assert.True(t, taken)

	taken, err = repo.EmailTaken(ctx, "rider@example.com", rider.ID)
	require.NoError(t, err)
	assert.False(t, taken)

	taken, err = repo.UsernameTaken(ctx, "rider", 0)
	require.NoError(t, err)
	assert.True(t, taken)
}

func TestUserCreateReportsDuplicates(t *testing.T) {
	db := newTestDB(t)
	f := fixture{t: t, db: db}
	repo := NewUserRepository(db)

	f.user("rider")

	err := repo.Create(context.Background(), &models.User{Username: "rider", Email: "else@example.com", Password: "x"})
	assert.ErrorIs(t, err, ErrDuplicate)
}
