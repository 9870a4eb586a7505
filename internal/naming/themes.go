package naming

import "funhub/internal/models"

// DefaultTheme is used when no theme, or an unknown one, is requested.
const DefaultTheme = "superheroes"

var themes = []models.Theme{
	{ID: "superheroes", Label: "Superheroes"},
	{ID: "space", Label: "Outer Space"},
	{ID: "animals", Label: "Animal Kingdom"},
	{ID: "nature", Label: "Elements of Nature"},
	{ID: "business", Label: "Business Elite"},
}

// Themes returns the selectable naming themes.
func Themes() []models.Theme {
	return append([]models.Theme(nil), themes...)
}

// ResolveTheme maps id onto a known theme id.
func ResolveTheme(id string) string {
	for _, t := range themes {
		if t.ID == id {
			return id
		}
	}
	return DefaultTheme
}
