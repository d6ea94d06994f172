// Package calendar proyecta una colección plana de citas sobre una grilla
// mensual fija de 6 semanas x 7 días.
package calendar

import (
	"fmt"
	"time"

	"vet-appointments/internal/domain/appointments"
)

// GridSize es siempre 42 (6 filas x 7 columnas), sin importar el mes.
const GridSize = 42

const daysPerWeek = 7

// WeekdayLabels empieza en domingo, igual que time.Weekday.
var WeekdayLabels = [daysPerWeek]string{"Dom", "Lun", "Mar", "Mié", "Jue", "Vie", "Sáb"}

var monthNames = [12]string{
	"enero", "febrero", "marzo", "abril", "mayo", "junio",
	"julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre",
}

// Month es el mes de referencia de la grilla.
type Month struct {
	Year  int
	Month time.Month
}

// MonthOf devuelve el mes que contiene t.
func MonthOf(t time.Time) Month {
	return Month{Year: t.Year(), Month: t.Month()}
}

// MonthFromIndex acepta el índice de mes base cero (0 = enero). Índices fuera
// de rango se normalizan igual que time.Date (12 => enero del año siguiente).
func MonthFromIndex(year, zeroBased int) Month {
	return MonthOf(time.Date(year, time.Month(zeroBased+1), 1, 0, 0, 0, 0, time.UTC))
}

// Index devuelve el índice base cero.
func (m Month) Index() int { return int(m.Month) - 1 }

func (m Month) First() time.Time {
	return time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC)
}

// DaysIn devuelve el último número de día del mes.
func (m Month) DaysIn() int {
	// día 0 del mes siguiente = último día de este mes
	return time.Date(m.Year, m.Month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func (m Month) Add(delta int) Month {
	return MonthOf(m.First().AddDate(0, delta, 0))
}

func (m Month) Previous() Month { return m.Add(-1) }
func (m Month) Next() Month     { return m.Add(1) }

func (m Month) IsZero() bool { return m.Year == 0 && m.Month == 0 }

func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

// Title devuelve el nombre del mes para mostrar, p.ej. "marzo de 2024".
func Title(m Month) string {
	if m.Month < time.January || m.Month > time.December {
		return m.String()
	}
	return fmt.Sprintf("%s de %d", monthNames[m.Month-1], m.Year)
}

// Day es una celda de la grilla. Se recalcula entera en cada proyección.
type Day struct {
	Number           int
	Date             time.Time
	InDisplayedMonth bool
	Appointments     []appointments.Detail
}

// Project construye las 42 celdas del mes m:
// cola del mes anterior, días del mes (con sus citas) y relleno del mes siguiente.
// Las citas se asignan por fecha YYYY-MM-DD; las que caen fuera del mes no aparecen.
func Project(m Month, items []appointments.Detail) []Day {
	first := m.First()
	leading := int(first.Weekday())
	daysInMonth := m.DaysIn()

	byDate := make(map[string][]appointments.Detail, len(items))
	for _, it := range items {
		key := it.DateKey()
		if key == "" {
			continue
		}
		byDate[key] = append(byDate[key], it)
	}

	days := make([]Day, 0, GridSize)

	for i := leading; i > 0; i-- {
		d := first.AddDate(0, 0, -i)
		days = append(days, Day{
			Number:       d.Day(),
			Date:         d,
			Appointments: []appointments.Detail{},
		})
	}

	for n := 1; n <= daysInMonth; n++ {
		d := time.Date(m.Year, m.Month, n, 0, 0, 0, 0, time.UTC)
		bucket := byDate[d.Format(appointments.DateLayout)]
		if bucket == nil {
			bucket = []appointments.Detail{}
		}
		days = append(days, Day{
			Number:           n,
			Date:             d,
			InDisplayedMonth: true,
			Appointments:     bucket,
		})
	}

	next := m.Next().First()
	for i := 0; len(days) < GridSize; i++ {
		d := next.AddDate(0, 0, i)
		days = append(days, Day{
			Number:       d.Day(),
			Date:         d,
			Appointments: []appointments.Detail{},
		})
	}

	return days
}

// Weeks parte la grilla en filas de 7 días.
func Weeks(days []Day) [][]Day {
	out := make([][]Day, 0, (len(days)+daysPerWeek-1)/daysPerWeek)
	for i := 0; i < len(days); i += daysPerWeek {
		end := i + daysPerWeek
		if end > len(days) {
			end = len(days)
		}
		out = append(out, days[i:end])
	}
	return out
}

// IsToday compara solo la fecha de calendario.
func IsToday(d Day, now time.Time) bool {
	return d.Date.Equal(appointments.DateOf(now))
}
