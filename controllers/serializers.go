// File: /controllers/serializers.go
package controllers

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"motoroutes-api/models"
	"motoroutes-api/services"
	"motoroutes-api/utils"
)

type UserResponse struct {
	ID              uint                  `json:"id"`
	Username        string                `json:"username"`
	Email           string                `json:"email"`
	FirstName       string                `json:"first_name"`
	LastName        string                `json:"last_name"`
	Bio             string                `json:"bio"`
	Avatar          *string               `json:"avatar"`
	Country         string                `json:"country"`
	MotorcycleType  models.MotorcycleType `json:"motorcycle_type"`
	MotorcycleBrand string                `json:"motorcycle_brand"`
	MotorcycleModel string                `json:"motorcycle_model"`
	MotorcycleYear  *int                  `json:"motorcycle_year"`
	CreatedAt       time.Time             `json:"created_at"`
}

type ImageResponse struct {
	ID        uint         `json:"id"`
	Image     string       `json:"image"`
	Caption   string       `json:"caption"`
	Route     *uint        `json:"route"`
	Location  *uint        `json:"location"`
	Uploader  UserResponse `json:"uploader"`
	CreatedAt time.Time    `json:"created_at"`
}

type CommentResponse struct {
	ID        uint         `json:"id"`
	Text      string       `json:"text"`
	Route     uint         `json:"route"`
	Author    UserResponse `json:"author"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

type LocationResponse struct {
	ID           uint                `json:"id"`
	Name         string              `json:"name"`
	Description  string              `json:"description"`
	LocationType models.LocationType `json:"location_type"`
	Latitude     float64             `json:"latitude"`
	Longitude    float64             `json:"longitude"`
	Route        *uint               `json:"route"`
	Creator      UserResponse        `json:"creator"`
	Images       []ImageResponse     `json:"images"`
	CreatedAt    time.Time           `json:"created_at"`
	UpdatedAt    time.Time           `json:"updated_at"`
}

// RouteListResponse is the lightweight route shape used by list endpoints.
type RouteListResponse struct {
	ID           uint              `json:"id"`
	Title        string            `json:"title"`
	Description  string            `json:"description"`
	Difficulty   models.Difficulty `json:"difficulty"`
	Distance     float64           `json:"distance"`
	DurationDays *int              `json:"duration_days"`
	Creator      UserResponse      `json:"creator"`
	models.RouteCounts
	CreatedAt time.Time `json:"created_at"`
}

// RouteDetailResponse carries the geometry and the nested child collections.
type RouteDetailResponse struct {
	ID           uint               `json:"id"`
	Title        string             `json:"title"`
	Description  string             `json:"description"`
	Difficulty   models.Difficulty  `json:"difficulty"`
	GeoJSON      json.RawMessage    `json:"geojson"`
	Distance     float64            `json:"distance"`
	DurationDays *int               `json:"duration_days"`
	Creator      UserResponse       `json:"creator"`
	Locations    []LocationResponse `json:"locations"`
	Images       []ImageResponse    `json:"images"`
	Comments     []CommentResponse  `json:"comments"`
	models.RouteCounts
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// serializer turns models into response bodies, resolving stored files to absolute URLs.
type serializer struct {
	storage services.FileStorage
	origin  string
}

func newSerializer(c *gin.Context, storage services.FileStorage) serializer {
	return serializer{storage: storage, origin: utils.RequestOrigin(c)}
}

func (s serializer) fileURL(ref string) string {
	url := s.storage.URL(ref)
	if strings.HasPrefix(url, "/") {
		return s.origin + url
	}
	return url
}

func (s serializer) User(u models.User) UserResponse {
	resp := UserResponse{
		ID:              u.ID,
		Username:        u.Username,
		Email:           u.Email,
		FirstName:       u.FirstName,
		LastName:        u.LastName,
		Bio:             u.Bio,
		Country:         u.Country,
		MotorcycleType:  u.MotorcycleType,
		MotorcycleBrand: u.MotorcycleBrand,
		MotorcycleModel: u.MotorcycleModel,
		MotorcycleYear:  u.MotorcycleYear,
		CreatedAt:       u.CreatedAt,
	}
	if u.Avatar != nil && *u.Avatar != "" {
		url := s.fileURL(*u.Avatar)
		resp.Avatar = &url
	}
	return resp
}

func (s serializer) Users(users []models.User) []UserResponse {
	out := make([]UserResponse, len(users))
	for i, u := range users {
		out[i] = s.User(u)
	}
	return out
}

func (s serializer) Image(i models.Image) ImageResponse {
	return ImageResponse{
		ID:        i.ID,
		Image:     s.fileURL(i.File),
		Caption:   i.Caption,
		Route:     i.RouteID,
		Location:  i.LocationID,
		Uploader:  s.User(i.Uploader),
		CreatedAt: i.CreatedAt,
	}
}

func (s serializer) Images(images []models.Image) []ImageResponse {
	out := make([]ImageResponse, len(images))
	for i, image := range images {
		out[i] = s.Image(image)
	}
	return out
}

func (s serializer) Comment(c models.Comment) CommentResponse {
	return CommentResponse{
		ID:        c.ID,
		Text:      c.Text,
		Route:     c.RouteID,
		Author:    s.User(c.Author),
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func (s serializer) Comments(comments []models.Comment) []CommentResponse {
	out := make([]CommentResponse, len(comments))
	for i, c := range comments {
		out[i] = s.Comment(c)
	}
	return out
}

func (s serializer) Location(l models.Location) LocationResponse {
	return LocationResponse{
		ID:           l.ID,
		Name:         l.Name,
		Description:  l.Description,
		LocationType: l.LocationType,
		Latitude:     l.Latitude,
		Longitude:    l.Longitude,
		Route:        l.RouteID,
		Creator:      s.User(l.Creator),
		Images:       s.Images(l.Images),
		CreatedAt:    l.CreatedAt,
		UpdatedAt:    l.UpdatedAt,
	}
}

func (s serializer) Locations(locations []models.Location) []LocationResponse {
	out := make([]LocationResponse, len(locations))
	for i, l := range locations {
		out[i] = s.Location(l)
	}
	return out
}

func (s serializer) RouteList(listings []services.RouteListing) []RouteListResponse {
	out := make([]RouteListResponse, len(listings))
	for i, l := range listings {
		r := l.Route
		out[i] = RouteListResponse{
			ID:           r.ID,
			Title:        r.Title,
			Description:  r.Description,
			Difficulty:   r.Difficulty,
			Distance:     r.Distance,
			DurationDays: r.DurationDays,
			Creator:      s.User(r.Creator),
			RouteCounts:  l.Counts,
			CreatedAt:    r.CreatedAt,
		}
	}
	return out
}

func (s serializer) RouteDetail(l services.RouteListing) RouteDetailResponse {
	r := l.Route
	return RouteDetailResponse{
		ID:           r.ID,
		Title:        r.Title,
		Description:  r.Description,
		Difficulty:   r.Difficulty,
		GeoJSON:      json.RawMessage(r.GeoJSON),
		Distance:     r.Distance,
		DurationDays: r.DurationDays,
		Creator:      s.User(r.Creator),
		Locations:    s.Locations(r.Locations),
		Images:       s.Images(r.Images),
		Comments:     s.Comments(r.Comments),
		RouteCounts:  l.Counts,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}
