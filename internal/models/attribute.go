package models

// Tag is a user-owned label attached to recipes by name.
type Tag struct {
	ID     uint   `gorm:"primaryKey" json:"id"`
	Name   string `gorm:"size:255;not null;index:idx_tags_user_name,priority:2" json:"name"`
	UserID uint   `gorm:"not null;index:idx_tags_user_name,priority:1" json:"-"`
	User   *User  `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

// Ingredient has the same shape as Tag but lives in its own table.
type Ingredient struct {
	ID     uint   `gorm:"primaryKey" json:"id"`
	Name   string `gorm:"size:255;not null;index:idx_ingredients_user_name,priority:2" json:"name"`
	UserID uint   `gorm:"not null;index:idx_ingredients_user_name,priority:1" json:"-"`
	User   *User  `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

// Attribute is the set of owner-scoped, name-keyed entities a recipe can reference.
type Attribute interface {
	Tag | Ingredient
	AttrID() uint
	AttrName() string
}

func (t Tag) AttrID() uint            { return t.ID }
func (t Tag) AttrName() string        { return t.Name }
func (i Ingredient) AttrID() uint     { return i.ID }
func (i Ingredient) AttrName() string { return i.Name }

// NewAttribute builds an unsaved attribute of kind T owned by userID.
func NewAttribute[T Attribute](userID uint, name string) T {
	var out T
	switch p := any(&out).(type) {
	case *Tag:
		p.UserID, p.Name = userID, name
	case *Ingredient:
		p.UserID, p.Name = userID, name
	}
	return out
}

// AttributeKind returns the plural resource name of T, used in logs and error fields.
func AttributeKind[T Attribute]() string {
	var zero T
	switch any(zero).(type) {
	case Tag:
		return "tags"
	default:
		return "ingredients"
	}
}
