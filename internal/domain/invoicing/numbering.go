package invoicing

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// SequenceWidth dígitos del consecutivo mensual.
const SequenceWidth = 4

var trailingSequence = regexp.MustCompile(`(\d{4})$`)

// NumberPrefix devuelve el prefijo "YYYY-MM-" del mes de t.
func NumberPrefix(t time.Time) string {
	return t.Format("2006-01-")
}

// FormatNumber concatena prefijo y consecutivo con relleno de ceros.
func FormatNumber(prefix string, seq int) string {
	return fmt.Sprintf("%s%0*d", prefix, SequenceWidth, seq)
}

// NextSequence calcula el siguiente consecutivo a partir de los números existentes del mes.
// Toma el mayor lexicográfico y suma uno a sus 4 dígitos finales; sin números (o sin dígitos) es 1.
func NextSequence(numbers []string) int {
	highest := ""
	for _, n := range numbers {
		if n > highest {
			highest = n
		}
	}
	m := trailingSequence.FindStringSubmatch(highest)
	if m == nil {
		return 1
	}
	last, err := strconv.Atoi(m[1])
	if err != nil {
		return 1
	}
	return last + 1
}

// NextNumber número candidato para el mes de now dados los existentes con ese prefijo.
func NextNumber(now time.Time, existing []string) string {
	return FormatNumber(NumberPrefix(now), NextSequence(existing))
}
