package engine

import (
	"fmt"
	"strings"
	"time"
)

var monthsShort = [12]string{"jan", "fev", "mar", "abr", "mai", "jun", "jul", "ago", "set", "out", "nov", "dez"}

var monthsLong = [12]string{
	"janeiro", "fevereiro", "março", "abril", "maio", "junho",
	"julho", "agosto", "setembro", "outubro", "novembro", "dezembro",
}

// ShortLabel renders a timeline label such as "mar/26".
func ShortLabel(t time.Time) string {
	return fmt.Sprintf("%s/%02d", monthsShort[t.Month()-1], t.Year()%100)
}

// LongLabel renders a target date such as "março de 2027".
func LongLabel(t time.Time) string {
	return fmt.Sprintf("%s de %d", monthsLong[t.Month()-1], t.Year())
}

// SeriesLabel renders a bar chart label such as "MAR".
func SeriesLabel(t time.Time) string {
	return strings.ToUpper(monthsShort[t.Month()-1])
}
