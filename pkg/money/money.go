// Package money formats values the way Brazilian customers read them on an order.
package money

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var months = [...]string{
	"janeiro", "fevereiro", "março", "abril", "maio", "junho",
	"julho", "agosto", "setembro", "outubro", "novembro", "dezembro",
}

// FormatBRL renders R$ 1.234,56
func FormatBRL(v decimal.Decimal) string {
	sign := ""
	if v.IsNegative() {
		sign = "-"
		v = v.Neg()
	}

	fixed := v.StringFixed(2)
	intPart, frac, _ := strings.Cut(fixed, ".")

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}

	return fmt.Sprintf("%sR$ %s,%s", sign, b.String(), frac)
}

// FormatDateLong renders "17 de outubro de 2026"
func FormatDateLong(t time.Time) string {
	return fmt.Sprintf("%02d de %s de %d", t.Day(), months[t.Month()-1], t.Year())
}

// FormatDate renders dd/mm/yyyy for tables and spreadsheets
func FormatDate(t time.Time) string {
	return t.Format("02/01/2006")
}
