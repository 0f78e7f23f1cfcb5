package settings

import (
	"regexp"
	"strings"

	"github.com/yuditriaji/atelie-lacos/pkg/database"
	"github.com/yuditriaji/atelie-lacos/pkg/draft"
)

var hexColor = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// Form is the editable store branding. Logo holds a URL returned by the logo upload.
type Form struct {
	StoreName  string `json:"store_name"`
	Logo       string `json:"logo"`
	Instagram  string `json:"instagram"`
	Phone      string `json:"phone"`
	WhatsApp   string `json:"whatsapp"`
	ThemeColor string `json:"theme_color"`
}

func (f Form) apply(s *database.StoreSettings) {
	s.StoreName = strings.TrimSpace(f.StoreName)
	s.Logo = strings.TrimSpace(f.Logo)
	s.Instagram = strings.TrimSpace(f.Instagram)
	s.Phone = strings.TrimSpace(f.Phone)
	s.WhatsApp = strings.TrimSpace(f.WhatsApp)
	s.ThemeColor = strings.TrimSpace(f.ThemeColor)
	if s.ThemeColor == "" {
		s.ThemeColor = database.DefaultThemeColor
	}
}

func formOf(s database.StoreSettings) Form {
	return Form{
		StoreName:  s.StoreName,
		Logo:       s.Logo,
		Instagram:  s.Instagram,
		Phone:      s.Phone,
		WhatsApp:   s.WhatsApp,
		ThemeColor: s.ThemeColor,
	}
}

func validate(s database.StoreSettings) error {
	return (&draft.Rules{}).
		RequireText("store_name", s.StoreName).
		Require("theme_color", hexColor.MatchString(s.ThemeColor)).
		Err()
}
