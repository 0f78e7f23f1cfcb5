package customer

import (
	"strings"

	"github.com/yuditriaji/atelie-lacos/pkg/database"
	"github.com/yuditriaji/atelie-lacos/pkg/draft"
)

// Form is the editable part of a customer. Name and phone are checked by
// validate, not by binding, so a rejected draft can be echoed back intact.
type Form struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Address string `json:"address"`
}

func (f Form) apply(c *database.Customer) {
	c.Name = strings.TrimSpace(f.Name)
	c.Phone = strings.TrimSpace(f.Phone)
	c.Email = strings.TrimSpace(f.Email)
	c.Address = strings.TrimSpace(f.Address)
}

func formOf(c database.Customer) Form {
	return Form{Name: c.Name, Phone: c.Phone, Email: c.Email, Address: c.Address}
}

func validate(c database.Customer) error {
	return (&draft.Rules{}).
		RequireText("name", c.Name).
		RequireText("phone", c.Phone).
		Err()
}

// searchFields are matched by the list filter
func searchFields(c database.Customer) []string {
	return []string{c.Name, c.Phone, c.Email}
}

func logValues(c database.Customer) map[string]interface{} {
	return map[string]interface{}{
		"name":    c.Name,
		"phone":   c.Phone,
		"email":   c.Email,
		"address": c.Address,
	}
}
