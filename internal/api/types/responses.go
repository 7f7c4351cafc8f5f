package types

import (
	"time"

	"github.com/athujoshi24/legendary-panel/internal/models"
)

type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
	Meta    *Meta       `json:"meta,omitempty"`
}

type APIError struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

type Meta struct {
	RequestID string `json:"request_id,omitempty"`
	Total     int64  `json:"total,omitempty"`
}

// AttributeResponse is the wire form of a tag or ingredient.
type AttributeResponse struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

type RecipeResponse struct {
	ID                 uint                `json:"id"`
	Title              string              `json:"title"`
	Type               models.Category     `json:"type"`
	CookingInstruction string              `json:"cookingInstruction"`
	Tags               []AttributeResponse `json:"tags"`
	Ingredients        []AttributeResponse `json:"ingredients"`
	CreatedOn          time.Time           `json:"rcpCreatedOn"`
}

type UserResponse struct {
	ID          uint      `json:"id"`
	Email       string    `json:"email"`
	Name        string    `json:"name"`
	IsStaff     bool      `json:"is_staff"`
	IsSuperuser bool      `json:"is_superuser"`
	DateJoined  time.Time `json:"date_joined"`
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

func NewAttributeResponse[T models.Attribute](v T) AttributeResponse {
	return AttributeResponse{ID: v.AttrID(), Name: v.AttrName()}
}

func NewAttributeList[T models.Attribute](rows []T) []AttributeResponse {
	out := make([]AttributeResponse, len(rows))
	for i, row := range rows {
		out[i] = NewAttributeResponse(row)
	}
	return out
}

func NewRecipeResponse(r *models.Recipe) RecipeResponse {
	return RecipeResponse{
		ID:                 r.ID,
		Title:              r.Title,
		Type:               r.Type,
		CookingInstruction: r.CookingInstruction,
		Tags:               NewAttributeList(r.Tags),
		Ingredients:        NewAttributeList(r.Ingredients),
		CreatedOn:          r.CreatedAt,
	}
}

func NewRecipeList(rs []models.Recipe) []RecipeResponse {
	out := make([]RecipeResponse, len(rs))
	for i := range rs {
		out[i] = NewRecipeResponse(&rs[i])
	}
	return out
}

func NewUserResponse(u *models.User) UserResponse {
	return UserResponse{
		ID:          u.ID,
		Email:       u.Email,
		Name:        u.Name,
		IsStaff:     u.IsStaff,
		IsSuperuser: u.IsSuperuser,
		DateJoined:  u.DateJoined,
	}
}
