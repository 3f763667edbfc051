package services

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"motoroutes-api/config"
	"motoroutes-api/database"
	"motoroutes-api/errs"
	"motoroutes-api/models"
	"motoroutes-api/repositories"
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

func strPtr(s string) *string { return &s }

func TestValidateGeoJSON(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr string
		want    string
	}{
		{name: "line string", raw: `{ "type": "LineString", "coordinates": [[0, 0], [1, 1]] }`, want: `{"type":"LineString","coordinates":[[0,0],[1,1]]}`},
		{name: "extra keys kept", raw: `{"type":"Point","coordinates":[1,2],"properties":{"name":"x"}}`, want: `{"type":"Point","coordinates":[1,2],"properties":{"name":"x"}}`},
		{name: "absent", raw: ``, wantErr: "This field is required."},
		{name: "null", raw: `null`, wantErr: "This field may not be null."},
		{name: "array", raw: `[1,2]`, wantErr: "GeoJSON must be a valid JSON object."},
		{name: "string", raw: `"LineString"`, wantErr: "GeoJSON must be a valid JSON object."},
		{name: "no type", raw: `{"coordinates":[]}`, wantErr: "GeoJSON must have a 'type' field."},
		{name: "no coordinates", raw: `{"type":"Point"}`, wantErr: "GeoJSON must have a 'coordinates' field."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ValidateGeoJSON(json.RawMessage(tt.raw))
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Equal(t, tt.wantErr, err.Error())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))
		})
	}
}

func TestNormalizeImageForm(t *testing.T) {
	got := NormalizeImageForm(map[string]string{
		"route":    "5",
		"location": "",
		"caption":  "12",
	})

	assert.Equal(t, 5, got["route"])
	assert.Nil(t, got["location"])
	assert.Equal(t, "12", got["caption"])

	got = NormalizeImageForm(map[string]string{"route": "abc"})
	assert.Equal(t, "abc", got["route"])
}

func TestImageInputFromForm(t *testing.T) {
	in := ImageInputFromForm(map[string]string{"route": "7", "location": "x"}, nil)

	require.NotNil(t, in.Route.Ptr())
	assert.EqualValues(t, 7, *in.Route.Ptr())
	assert.Empty(t, in.Route.TypeError())
	assert.Equal(t, "Incorrect type. Expected pk value, received str.", in.Location.TypeError())
	assert.Nil(t, in.Caption)

	in = ImageInputFromForm(map[string]string{"route": ""}, nil)
	assert.True(t, in.Route.Null)
	assert.False(t, in.Location.Set)
}

func TestPKValueUnmarshal(t *testing.T) {
	tests := []struct {
		raw       string
		id        uint
		null      bool
		typeError string
		missing   string
	}{
		{raw: `5`, id: 5, missing: `Invalid pk "5" - object does not exist.`},
		{raw: `null`, null: true},
		{raw: `"5"`, id: 5},
		{raw: `" 7 "`, id: 7},
		{raw: `"abc"`, typeError: "Incorrect type. Expected pk value, received str."},
		{raw: `""`, typeError: "Incorrect type. Expected pk value, received str."},
		{raw: `true`, typeError: "Incorrect type. Expected pk value, received bool."},
		{raw: `[1]`, typeError: "Incorrect type. Expected pk value, received list."},
		{raw: `2.0`, id: 2},
		{raw: `2.5`, missing: `Invalid pk "2.5" - object does not exist.`},
		{raw: `0`, missing: `Invalid pk "0" - object does not exist.`},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			var pk PKValue
			require.NoError(t, json.Unmarshal([]byte(tt.raw), &pk))

			assert.True(t, pk.Set)
			assert.Equal(t, tt.null, pk.Null)
			assert.Equal(t, tt.id, pk.ID)
			assert.Equal(t, tt.typeError, pk.TypeError())
			if tt.missing != "" {
				assert.Equal(t, tt.missing, pk.MissingError())
			}
		})
	}
}

func TestCheckPK(t *testing.T) {
	ctx := context.Background()
	exists := func(_ context.Context, id uint) (bool, error) { return id == 1, nil }

	fields := errs.FieldErrors{}
	require.NoError(t, checkPK(ctx, fields, "route", PKFromValue(1), exists))
	require.NoError(t, checkPK(ctx, fields, "absent", PKValue{}, exists))
	require.NoError(t, checkPK(ctx, fields, "null", PKFromValue(nil), exists))
	assert.Empty(t, fields)

	require.NoError(t, checkPK(ctx, fields, "route", PKFromValue(9), exists))
	require.NoError(t, checkPK(ctx, fields, "location", PKFromValue("abc"), exists))
	assert.Equal(t, []string{`Invalid pk "9" - object does not exist.`}, fields["route"])
	assert.Equal(t, []string{"Incorrect type. Expected pk value, received str."}, fields["location"])
}

func TestLocalStorage(t *testing.T) {
	root := t.TempDir()
	storage := NewLocalStorage(root, "/media")
	ctx := context.Background()

	ref, err := storage.Save(ctx, "route_images", "Pass.JPG", strings.NewReader("data"), 4, "image/jpeg")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(ref, "route_images/"))
	assert.True(t, strings.HasSuffix(ref, ".jpg"))
	assert.Equal(t, "/media/"+ref, storage.URL(ref))
	assert.Empty(t, storage.URL(""))

	content, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(ref)))
	require.NoError(t, err)
	assert.Equal(t, "data", string(content))

	require.NoError(t, storage.Delete(ctx, ref))
	_, err = os.Stat(filepath.Join(root, filepath.FromSlash(ref)))
	assert.True(t, os.IsNotExist(err))
	assert.NoError(t, storage.Delete(ctx, ref))
}

func TestSniffImage(t *testing.T) {
	png := []byte("\x89PNG\r\n\x1a\nrest-of-file")

	reader, detected, ok := sniffImage(&Upload{Content: bytes.NewReader(png)})
	require.True(t, ok)
	assert.Equal(t, "image/png", detected)
	all, err := io.ReadAll(reader)
	require.NoError(t, err)
	assert.Equal(t, png, all)

	_, _, ok = sniffImage(&Upload{Content: strings.NewReader("just text")})
	assert.False(t, ok)

	_, detected, ok = sniffImage(&Upload{Content: strings.NewReader("")})
	assert.False(t, ok)
	assert.Empty(t, detected)
}

func TestRegisterPasswordMismatchWritesNothing(t *testing.T) {
	db := newTestDB(t)
	users := repositories.NewUserRepository(db)
	svc := NewUserService(users, NewLocalStorage(t.TempDir(), "/media/"), utils.NewValidator())

	_, err := svc.Register(context.Background(), RegisterInput{
		Username:  strPtr("rider"),
		Email:     strPtr("rider@example.com"),
		Password:  strPtr("abc123"),
		Password2: strPtr("abc124"),
	})

	require.True(t, errs.IsValidation(err))
	assert.Equal(t, []string{"Password fields didn't match."}, errs.FieldsOf(err)["password"])

	_, err = users.FindByUsername(context.Background(), "rider")
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestRouteUpdateByNonOwnerLeavesRouteUnchanged(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	users := repositories.NewUserRepository(db)
	routes := repositories.NewRouteRepository(db)
	svc := NewRouteService(routes, NewLocalStorage(t.TempDir(), "/media/"), utils.NewValidator())

	owner := &models.User{Username: "owner", Email: "owner@example.com", Password: "x"}
	other := &models.User{Username: "other", Email: "other@example.com", Password: "x"}
	require.NoError(t, users.Create(ctx, owner))
	require.NoError(t, users.Create(ctx, other))

	created, err := svc.Create(ctx, models.Identity{UserID: owner.ID}, RouteInput{
		Title:       strPtr("Stelvio"),
		Description: strPtr("48 hairpins"),
		GeoJSON:     json.RawMessage(`{"type":"LineString","coordinates":[[0,0],[1,1]]}`),
		Distance:    utils.Some(49.5),
	})
	require.NoError(t, err)
	assert.Equal(t, models.DifficultyModerate, created.Route.Difficulty)

	_, err = svc.Update(ctx, models.Identity{UserID: other.ID}, created.Route.ID, RouteInput{Title: strPtr("Hijacked")}, true)
	assert.True(t, errs.IsForbidden(err))

	_, err = svc.Update(ctx, models.Identity{UserID: other.ID}, created.Route.ID+100, RouteInput{Title: strPtr("x")}, true)
	assert.True(t, errs.IsNotFound(err))

	err = svc.Delete(ctx, models.Identity{UserID: other.ID}, created.Route.ID)
	assert.True(t, errs.IsForbidden(err))

	stored, err := routes.FindByID(ctx, created.Route.ID)
	require.NoError(t, err)
	assert.Equal(t, "Stelvio", stored.Title)
}

func TestTokenService(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	users := repositories.NewUserRepository(db)
	userSvc := NewUserService(users, NewLocalStorage(t.TempDir(), "/media/"), utils.NewValidator())
	tokens := NewTokenService(users, "secret", time.Minute, time.Hour)

	user, err := userSvc.Register(ctx, RegisterInput{
		Username:  strPtr("rider"),
		Email:     strPtr("rider@example.com"),
		Password:  strPtr("ridefast123"),
		Password2: strPtr("ridefast123"),
	})
	require.NoError(t, err)

	pair, err := tokens.Obtain(ctx, "rider", "ridefast123")
	require.NoError(t, err)

	identity, err := tokens.Authenticate(ctx, pair.Access)
	require.NoError(t, err)
	assert.Equal(t, models.Identity{UserID: user.ID, Username: "rider"}, identity)

	_, err = tokens.Authenticate(ctx, pair.Refresh)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Token has wrong type")

	access, err := tokens.Refresh(ctx, pair.Refresh)
	require.NoError(t, err)
	_, err = tokens.Authenticate(ctx, access)
	assert.NoError(t, err)

	_, err = NewTokenService(users, "other-secret", time.Minute, time.Hour).Authenticate(ctx, pair.Access)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Given token not valid for any token type")

	_, err = tokens.Obtain(ctx, "rider", "wrong")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "No active account found with the given credentials")
}

func TestRegisterReportsConcurrentDuplicateAsFieldError(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	users := repositories.NewUserRepository(db)
	svc := NewUserService(users, NewLocalStorage(t.TempDir(), "/media/"), utils.NewValidator())

	// Another request wins the race between the uniqueness check and the insert.
	raced := false
	require.NoError(t, db.Callback().Create().Before("gorm:create").Register("test:concurrent_signup", func(tx *gorm.DB) {
		if raced || tx.Statement.Schema == nil || tx.Statement.Schema.Table != "users" {
			return
		}
		raced = true
		_, err := tx.Statement.ConnPool.ExecContext(tx.Statement.Context,
			"INSERT INTO users (username, email, password, created_at, updated_at) VALUES (?, ?, ?, ?, ?)",
			"rider", "first@example.com", "x", time.Now(), time.Now())
		require.NoError(t, err)
	}))

	_, err := svc.Register(ctx, RegisterInput{
		Username:  strPtr("rider"),
		Email:     strPtr("rider@example.com"),
		Password:  strPtr("ridefast123"),
		Password2: strPtr("ridefast123"),
	})

	require.True(t, raced)
	require.True(t, errs.IsValidation(err), "got %v", err)
	assert.Equal(t, []string{"A user with that username already exists."}, errs.FieldsOf(err)["username"])
}

func TestDeleteRemovesStoredFiles(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	root := t.TempDir()
	storage := NewLocalStorage(root, "/media/")
	users := repositories.NewUserRepository(db)
	routes := repositories.NewRouteRepository(db)
	locations := repositories.NewLocationRepository(db)

	save := func(dir string) string {
		ref, err := storage.Save(ctx, dir, "file.png", strings.NewReader("png"), 3, "image/png")
		require.NoError(t, err)
		return ref
	}
	exists := func(ref string) bool {
		_, err := os.Stat(filepath.Join(root, filepath.FromSlash(ref)))
		return err == nil
	}

	avatar := save("avatars")
	rider := &models.User{Username: "rider", Email: "rider@example.com", Password: "x", Avatar: &avatar}
	keeper := &models.User{Username: "keeper", Email: "keeper@example.com", Password: "x"}
	require.NoError(t, users.Create(ctx, rider))
	require.NoError(t, users.Create(ctx, keeper))

	loc := &models.Location{Name: "Summit", LocationType: models.LocationViewpoint, CreatorID: keeper.ID}
	require.NoError(t, db.Omit("Creator").Create(loc).Error)
	locationImage := save("route_images")
	require.NoError(t, db.Omit("Uploader").Create(&models.Image{File: locationImage, UploaderID: keeper.ID, LocationID: &loc.ID}).Error)

	route := &models.Route{
		Title:      "Stelvio",
		Difficulty: models.DifficultyModerate,
		GeoJSON:    []byte(`{"type":"Point","coordinates":[0,0]}`),
		CreatorID:  rider.ID,
	}
	require.NoError(t, db.Omit("Creator").Create(route).Error)
	routeImage := save("route_images")
	require.NoError(t, db.Omit("Uploader").Create(&models.Image{File: routeImage, UploaderID: keeper.ID, RouteID: &route.ID}).Error)

	locationSvc := NewLocationService(locations, routes, storage, utils.NewValidator())
	require.NoError(t, locationSvc.Delete(ctx, models.Identity{UserID: keeper.ID}, loc.ID))
	assert.False(t, exists(locationImage))
	assert.True(t, exists(routeImage))

	userSvc := NewUserService(users, storage, utils.NewValidator())
	require.NoError(t, userSvc.Delete(ctx, rider.ID))
	assert.False(t, exists(routeImage))
	assert.False(t, exists(avatar))

	assert.True(t, errs.IsNotFound(userSvc.Delete(ctx, rider.ID)))
}
