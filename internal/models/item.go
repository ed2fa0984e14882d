package models

import (
	"strings"
	"unicode/utf8"
)

type ItemStatus string

const (
	StatusLost  ItemStatus = "lost"
	StatusFound ItemStatus = "found"
)

func (s ItemStatus) Valid() bool {
	return s == StatusLost || s == StatusFound
}

// PlaceholderImageURL is used for listings submitted without a photo.
const PlaceholderImageURL = "https://placehold.co/600x400.png"

// Item is a single lost/found listing.
type Item struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	ImageURL    string      `json:"imageUrl"`
	ImageHint   string      `json:"imageHint"`
	Status      ItemStatus  `json:"status"`
	Resolved    bool        `json:"resolved"`
	Institution Institution `json:"institution"`
	Category    string      `json:"category"`
	UserID      string      `json:"userId"`
}

// ItemDraft is a listing as submitted, before the store assigns an id and the
// cache fills in ownership and resolution.
type ItemDraft struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	ImageURL    string      `json:"imageUrl"`
	ImageHint   string      `json:"imageHint"`
	Status      ItemStatus  `json:"status"`
	Institution Institution `json:"institution"`
	Category    string      `json:"category"`
}

const (
	minNameLength        = 3
	minDescriptionLength = 10
)

func (d *ItemDraft) Validate() map[string]string {
	errors := make(map[string]string)

	if utf8.RuneCountInString(strings.TrimSpace(d.Name)) < minNameLength {
		errors["name"] = "Item name must be at least 3 characters."
	}
	if utf8.RuneCountInString(strings.TrimSpace(d.Description)) < minDescriptionLength {
		errors["description"] = "Description must be at least 10 characters."
	}
	if !d.Status.Valid() {
		errors["status"] = "You need to select a status."
	}
	if !d.Institution.Valid() {
		errors["institution"] = "Please select an institution."
	}
	if strings.TrimSpace(d.Category) == "" {
		errors["category"] = "Please select a category."
	}
	if strings.TrimSpace(d.ImageURL) == "" {
		errors["imageUrl"] = "Image is required."
	}

	return errors
}

// ToItem builds the stored form of the draft. id stays empty until the store
// assigns one.
func (d *ItemDraft) ToItem(userID string) Item {
	hint := d.ImageHint
	if hint == "" {
		hint = ImageHint(d.Name)
	}
	return Item{
		Name:        d.Name,
		Description: d.Description,
		ImageURL:    d.ImageURL,
		ImageHint:   hint,
		Status:      d.Status,
		Resolved:    false,
		Institution: d.Institution,
		Category:    d.Category,
		UserID:      userID,
	}
}

// ImageHint derives the rendering hint from an item name: its first two
// words, lowercased.
func ImageHint(name string) string {
	words := strings.Fields(strings.ToLower(name))
	if len(words) > 2 {
		words = words[:2]
	}
	return strings.Join(words, " ")
}

// Suggested item categories. The data layer does not enforce this set.
var ItemCategories = []string{
	"Electronics",
	"Books",
	"Clothing",
	"Bottles",
	"Keys",
	"IDs & Cards",
	"Jewelry",
	"Accessories",
	"Other",
}
