package preference

import "time"

// Theme represents the color scheme a signed-in user prefers
type Theme string

const (
	ThemeLight  Theme = "light"
	ThemeDark   Theme = "dark"
	ThemeSystem Theme = "system"
)

// DefaultTheme is used until a user saves a preference.
const DefaultTheme = ThemeSystem

// Valid reports whether t is a known theme.
func (t Theme) Valid() bool {
	switch t {
	case ThemeLight, ThemeDark, ThemeSystem:
		return true
	default:
		return false
	}
}

// Preference is the stored theme choice of a user
type Preference struct {
	UserID    string    `json:"user_id"`
	Theme     Theme     `json:"theme"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}
