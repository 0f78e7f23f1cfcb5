package draft

import "strings"

// ValidationError lists the required fields a draft is missing
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "required fields missing: " + strings.Join(e.Fields, ", ")
}

// Rules collects required-field checks
type Rules struct {
	missing []string
}

func (r *Rules) Require(field string, ok bool) *Rules {
	if !ok {
		r.missing = append(r.missing, field)
	}
	return r
}

// RequireText fails when value is empty or only whitespace
func (r *Rules) RequireText(field, value string) *Rules {
	return r.Require(field, strings.TrimSpace(value) != "")
}

// Err returns a *ValidationError when any check failed
func (r *Rules) Err() error {
	if len(r.missing) == 0 {
		return nil
	}
	return &ValidationError{Fields: append([]string(nil), r.missing...)}
}
