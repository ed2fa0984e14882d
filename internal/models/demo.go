package models

// DemoItems returns a fresh copy of the built-in demonstration set. It seeds an
// empty store and stands in for the live collection when the subscription
// fails.
func DemoItems() []Item {
	out := make([]Item, len(demoItems))
	copy(out, demoItems)
	return out
}

var demoItems = []Item{
	{
		ID:          "1",
		Name:        "Blue Water Bottle",
		Description: "A classic blue water bottle, might have a small dent on the side. Last seen near the library.",
		ImageURL:    PlaceholderImageURL,
		ImageHint:   "water bottle",
		Status:      StatusLost,
		Institution: InstitutionIIITA,
		Category:    "Bottles",
		UserID:      "initial_user_1",
	},
	{
		ID:          "2",
		Name:        "Found: Black Headphones",
		Description: "Found a pair of black Sony headphones in the cafeteria. They are in their case.",
		ImageURL:    PlaceholderImageURL,
		ImageHint:   "headphones case",
		Status:      StatusFound,
		Institution: InstitutionIIITA,
		Category:    "Electronics",
		UserID:      "initial_user_2",
	},
	{
		ID:          "3",
		Name:        "Lost ID Card",
		Description: `Lost my student ID card, name is "Alex Doe". Probably dropped it somewhere in the academic block.`,
		ImageURL:    PlaceholderImageURL,
		ImageHint:   "id card",
		Status:      StatusLost,
		Resolved:    true,
		Institution: InstitutionIIITH,
		Category:    "IDs & Cards",
		UserID:      "initial_user_1",
	},
	{
		ID:          "4",
		Name:        "Gray Hoodie",
		Description: "Lost a gray hoodie with a university logo on it. It was in the sports complex.",
		ImageURL:    PlaceholderImageURL,
		ImageHint:   "gray hoodie",
		Status:      StatusLost,
		Institution: InstitutionIIITD,
		Category:    "Clothing",
		UserID:      "initial_user_3",
	},
	{
		ID:          "5",
		Name:        "Found: Set of Keys",
		Description: "Found a set of keys with a red keychain attached. They were on a bench near the main gate.",
		ImageURL:    PlaceholderImageURL,
		ImageHint:   "keys keychain",
		Status:      StatusFound,
		Institution: InstitutionIIITB,
		Category:    "Keys",
		UserID:      "initial_user_4",
	},
	{
		ID:          "6",
		Name:        "Mathematics Textbook",
		Description: `Lost my "Advanced Engineering Mathematics" textbook. It has some notes written inside.`,
		ImageURL:    PlaceholderImageURL,
		ImageHint:   "book math",
		Status:      StatusLost,
		Institution: InstitutionIIITA,
		Category:    "Books",
		UserID:      "initial_user_1",
	},
	{
		ID:          "7",
		Name:        "Found: Silver Ring",
		Description: "Found a simple silver ring in the library washroom. It seems to have an engraving inside.",
		ImageURL:    PlaceholderImageURL,
		ImageHint:   "silver ring",
		Status:      StatusFound,
		Institution: InstitutionIIITH,
		Category:    "Jewelry",
		UserID:      "initial_user_5",
	},
	{
		ID:          "8",
		Name:        "Lost: Black Umbrella",
		Description: "Left my black umbrella in Lecture Hall 5. It has a wooden handle.",
		ImageURL:    PlaceholderImageURL,
		ImageHint:   "black umbrella",
		Status:      StatusLost,
		Institution: InstitutionIIITD,
		Category:    "Accessories",
		UserID:      "initial_user_6",
	},
}
