package model

// Template is a starting point for a new project. Templates are owned by the
// system and seeded by migrations; the API only reads them.
type Template struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	ImageURL    string `json:"imageUrl"`
	Featured    bool   `json:"featured"`
}
