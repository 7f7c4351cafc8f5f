package models

import (
	"time"
)

// Category is the dietary classification of a recipe.
type Category string

const (
	CategoryVeg    Category = "VEG"
	CategoryNonVeg Category = "NON-VEG"
)

// MaxInstructionLength bounds Recipe.CookingInstruction.
const MaxInstructionLength = 2000

// Recipe is owned by a user and references tags and ingredients through link tables.
type Recipe struct {
	ID                 uint         `gorm:"primaryKey" json:"id"`
	UserID             uint         `gorm:"not null;index" json:"-"`
	User               *User        `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Title              string       `gorm:"size:255;not null" json:"title"`
	Type               Category     `gorm:"type:varchar(16);not null;index" json:"type"`
	CookingInstruction string       `gorm:"size:2000;not null;default:''" json:"cookingInstruction"`
	Tags               []Tag        `gorm:"many2many:recipe_tags;" json:"tags"`
	Ingredients        []Ingredient `gorm:"many2many:recipe_ingredients;" json:"ingredients"`
	CreatedAt          time.Time    `gorm:"<-:create;autoCreateTime" json:"rcpCreatedOn"`
	UpdatedAt          time.Time    `json:"updated_at"`
}
