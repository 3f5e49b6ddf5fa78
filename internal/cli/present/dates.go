package present

import (
	"fmt"
	"time"

	"PsyDesk/internal/cli/model"
)

var (
	weekdays = [...]string{"domingo", "lunes", "martes", "miércoles", "jueves", "viernes", "sábado"}
	months   = [...]string{"enero", "febrero", "marzo", "abril", "mayo", "junio", "julio",
		"agosto", "septiembre", "octubre", "noviembre", "diciembre"}
)

// LongDate форматирует дату как «lunes, 3 de marzo de 2025».
func LongDate(t time.Time) string {
	return fmt.Sprintf("%s, %d de %s de %d", weekdays[t.Weekday()], t.Day(), months[t.Month()-1], t.Year())
}

// ShortDate форматирует дату по layout; нулевая дата: «sin fecha».
func ShortDate(d model.Date, layout string) string {
	if d.IsZero() {
		return "sin fecha"
	}
	return d.Format(layout)
}

// DateTime форматирует дату и время для метаданных записи.
func DateTime(d model.Date, layout string) string {
	if d.IsZero() {
		return "—"
	}
	return d.Format(layout + " 15:04")
}
