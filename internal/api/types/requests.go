package types

type RegisterRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
	Name     string `json:"name"`
}

type TokenRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type ProfileUpdateRequest struct {
	Name     *string `json:"name"`
	Password *string `json:"password"`
}

type AttributeCreateRequest struct {
	Name string `json:"name"`
}

// RecipeRequest serves create, full and partial update. Absent keys decode
// to nil.
type RecipeRequest struct {
	Title              *string   `json:"title"`
	Type               *string   `json:"type"`
	CookingInstruction *string   `json:"cookingInstruction"`
	Tags               *[]string `json:"tags"`
	Ingredients        *[]string `json:"ingredients"`
}
