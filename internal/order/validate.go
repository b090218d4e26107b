package order

import (
	"strings"
	"time"
)

const maxTextLength = 500

// forbidden substrings; any hit rejects the whole value.
var forbidden = []string{"<", ">", `"`, "'", ";", "--", "/*", "*/"}

type ValidationResult struct {
	Valid  bool
	Errors []string
}

// Validate checks a draft against the entry rules. It never mutates the
// draft and performs no I/O; callers run it before anything leaves the
// cart.
func Validate(d *Draft, now time.Time) ValidationResult {
	var errs []string

	if strings.TrimSpace(d.Flavor) == "" {
		errs = append(errs, "Sabor requerido")
	}
	if d.Flavor == OtherOption && strings.TrimSpace(d.CustomFlavor) == "" {
		errs = append(errs, "Sabor personalizado requerido")
	}
	if strings.TrimSpace(d.Size) == "" {
		errs = append(errs, "Tamaño requerido")
	}
	if d.Quantity < 1 {
		errs = append(errs, "Cantidad debe ser mayor a 0")
	}
	if d.UnitPrice <= 0 {
		errs = append(errs, "Precio debe ser mayor a 0")
	}
	if strings.TrimSpace(d.Branch) == "" {
		errs = append(errs, "Sucursal requerida")
	}
	if d.DeliveryDate.IsZero() {
		errs = append(errs, "Fecha de entrega requerida")
	} else if d.DeliveryDate.Before(StartOfDay(now)) {
		errs = append(errs, "La fecha de entrega no puede ser anterior a hoy")
	}

	if d.Kind == KindClient {
		if len([]rune(d.Dedication)) > maxTextLength {
			errs = append(errs, "Dedicatoria muy larga (máximo 500 caracteres)")
		}
		if len([]rune(d.Details)) > maxTextLength {
			errs = append(errs, "Detalles muy largos (máximo 500 caracteres)")
		}
	}

	return ValidationResult{Valid: len(errs) == 0, Errors: errs}
}

// Sanitize trims the value, or reports false when it contains any
// forbidden substring. The whole string is rejected, never stripped.
func Sanitize(s string) (string, bool) {
	for _, sub := range forbidden {
		if strings.Contains(s, sub) {
			return "", false
		}
	}
	return strings.TrimSpace(s), true
}
