package calendar

import (
	"fmt"
	"io"
	"strings"
)

// Render escribe la grilla como texto: título, encabezado de días y 6 filas.
// Días fuera del mes van entre paréntesis; "+n" indica n citas ese día.
func Render(w io.Writer, m Month, days []Day) error {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", Title(m))
	for _, l := range WeekdayLabels {
		fmt.Fprintf(&b, "%-7s", l)
	}
	b.WriteString("\n")

	for _, week := range Weeks(days) {
		for _, d := range week {
			cell := fmt.Sprintf("%2d", d.Number)
			if !d.InDisplayedMonth {
				cell = "(" + strings.TrimSpace(cell) + ")"
			} else if n := len(d.Appointments); n > 0 {
				cell = fmt.Sprintf("%s+%d", cell, n)
			}
			fmt.Fprintf(&b, "%-7s", cell)
		}
		b.WriteString("\n")
	}

	_, err := io.WriteString(w, strings.TrimRight(b.String(), " "))
	return err
}
