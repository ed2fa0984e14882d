package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func validDraft() ItemDraft {
	return ItemDraft{
		Name:        "Red Umbrella",
		Description: "Left in room 3",
		ImageURL:    PlaceholderImageURL,
		Status:      StatusFound,
		Institution: InstitutionIIITB,
		Category:    "Accessories",
	}
}

func TestItemDraft_Validate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(d *ItemDraft)
		wantField string
	}{
		{name: "valid", mutate: func(d *ItemDraft) {}},
		{name: "short name", mutate: func(d *ItemDraft) { d.Name = "ab" }, wantField: "name"},
		{name: "whitespace name", mutate: func(d *ItemDraft) { d.Name = "   a  " }, wantField: "name"},
		{name: "short description", mutate: func(d *ItemDraft) { d.Description = "too short" }, wantField: "description"},
		{name: "bad status", mutate: func(d *ItemDraft) { d.Status = "stolen" }, wantField: "status"},
		{name: "unknown institution", mutate: func(d *ItemDraft) { d.Institution = "MIT" }, wantField: "institution"},
		{name: "missing category", mutate: func(d *ItemDraft) { d.Category = "" }, wantField: "category"},
		{name: "missing image", mutate: func(d *ItemDraft) { d.ImageURL = "" }, wantField: "imageUrl"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := validDraft()
			tt.mutate(&d)
			errs := d.Validate()
			if tt.wantField == "" {
				assert.Empty(t, errs)
				return
			}
			assert.Len(t, errs, 1)
			assert.Contains(t, errs, tt.wantField)
		})
	}
}

func TestItemDraft_ValidateAcceptsFreeCategory(t *testing.T) {
	d := validDraft()
	d.Category = "Musical Instruments"
	assert.Empty(t, d.Validate())
}

func TestItemDraft_ToItem(t *testing.T) {
	d := validDraft()
	item := d.ToItem("user_1_abc")

	assert.Empty(t, item.ID)
	assert.False(t, item.Resolved)
	assert.Equal(t, "user_1_abc", item.UserID)
	assert.Equal(t, "red umbrella", item.ImageHint)
	assert.Equal(t, InstitutionIIITB, item.Institution)

	d.ImageHint = "custom hint"
	assert.Equal(t, "custom hint", d.ToItem("u").ImageHint)
}

func TestImageHint(t *testing.T) {
	assert.Equal(t, "blue water", ImageHint("Blue Water Bottle"))
	assert.Equal(t, "keys", ImageHint("Keys"))
	assert.Equal(t, "found: black", ImageHint("  Found:   Black Headphones "))
	assert.Equal(t, "", ImageHint(""))
}

func TestParseInstitution(t *testing.T) {
	inst, ok := ParseInstitution("IIITH")
	assert.True(t, ok)
	assert.Equal(t, InstitutionIIITH, inst)

	_, ok = ParseInstitution("iiith")
	assert.False(t, ok)
	_, ok = ParseInstitution("")
	assert.False(t, ok)

	assert.Equal(t, "IIIT Bangalore", InstitutionIIITB.DisplayName())
	assert.Equal(t, "MIT", Institution("MIT").DisplayName())
}

func TestDemoItems_ReturnsCopy(t *testing.T) {
	a := DemoItems()
	a[0].Name = "changed"
	b := DemoItems()
	assert.Equal(t, "Blue Water Bottle", b[0].Name)
	assert.Len(t, b, 8)
}

func TestDemoItems_Shape(t *testing.T) {
	items := DemoItems()
	lost, found := SplitByStatus(items)
	assert.Len(t, lost, 5)
	assert.Len(t, found, 3)

	seen := map[Institution]bool{}
	ids := map[string]bool{}
	for _, item := range items {
		seen[item.Institution] = true
		assert.False(t, ids[item.ID], "duplicate id %s", item.ID)
		ids[item.ID] = true
	}
	assert.Len(t, seen, 4)
}
