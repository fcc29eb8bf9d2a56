package domain

// Themes selectable by the user.
const (
	ThemeDefault  = "default"
	ThemeSunset   = "sunset"
	ThemeMidnight = "midnight"
)

// ValidTheme reports whether t names a known theme.
func ValidTheme(t string) bool {
	return t == ThemeDefault || t == ThemeSunset || t == ThemeMidnight
}

// NextTheme returns the theme following t in the cycle
// default -> sunset -> midnight -> default.
func NextTheme(t string) string {
	switch t {
	case ThemeDefault:
		return ThemeSunset
	case ThemeSunset:
		return ThemeMidnight
	default:
		return ThemeDefault
	}
}

// SelectedClassAll is the class selection meaning "no class filter".
const SelectedClassAll = "all"

// UISettings is the persisted UI preferences document. It is stored and
// loaded independently of the task document.
type UISettings struct {
	Theme             string `json:"theme"`
	FocusDate         string `json:"focusDate,omitempty"`
	CalendarWeekStart string `json:"calendarWeekStart"`
	SelectedClassID   string `json:"selectedClassId"`
	Scratchpad        string `json:"scratchpad"`
}

// DefaultUISettings returns fresh UI preferences. CalendarWeekStart is left
// empty here; the ensure-shape migration fills it in on load.
func DefaultUISettings() UISettings {
	return UISettings{
		Theme:           ThemeDefault,
		SelectedClassID: SelectedClassAll,
	}
}
