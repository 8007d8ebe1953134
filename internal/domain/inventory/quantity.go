package inventory

import (
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// ParseQuantity convierte el texto libre de la columna STOCK a decimal de forma tolerante:
// "10", " 10 ", "10,5", "10.5", "1,234.5", "10 u", "(3,5)".
// Si tiene ',' y '.', la coma es separador de miles; si solo tiene ',', es el decimal.
// Un texto entre paréntesis es negativo. Texto que no parsea devuelve cero.
func ParseQuantity(text string) decimal.Decimal {
	s := strings.TrimSpace(text)
	if s == "" {
		return decimal.Zero
	}
	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = s[1 : len(s)-1]
	}

	var b strings.Builder
	for _, r := range s {
		if unicode.IsSpace(r) {
			continue
		}
		if (r >= '0' && r <= '9') || r == ',' || r == '.' || r == '-' {
			b.WriteRune(r)
		}
	}
	clean := b.String()
	if clean == "" {
		return decimal.Zero
	}
	if strings.Contains(clean, ",") && strings.Contains(clean, ".") {
		clean = strings.ReplaceAll(clean, ",", "")
	} else {
		clean = strings.ReplaceAll(clean, ",", ".")
	}

	d, err := decimal.NewFromString(clean)
	if err != nil {
		return decimal.Zero
	}
	if negative {
		return d.Neg()
	}
	return d
}

// FormatQuantity devuelve la forma canónica que se persiste en STOCK:
// enteros sin parte decimal, el resto con hasta 2 decimales sin ceros a la derecha.
func FormatQuantity(q decimal.Decimal) string {
	if q.Sub(q.Round(0)).Abs().LessThan(Epsilon) {
		q = q.Round(0)
	}
	return q.Round(QuantityDecimals).String()
}

// QuantityDecimals decimales que se persisten en STOCK.
const QuantityDecimals = 2

// ValidQuantity indica si q es positiva y se puede guardar en STOCK sin redondear.
// Una cantidad más fina (0.005) dejaría origen, destino e historial desalineados.
func ValidQuantity(q decimal.Decimal) bool {
	return q.IsPositive() && q.Equal(q.Round(QuantityDecimals))
}

// Epsilon es la tolerancia usada al comparar cantidad pedida contra disponible.
var Epsilon = decimal.New(1, -9)

// ExceedsAvailable indica si requested supera available por más de eps.
func ExceedsAvailable(requested, available, eps decimal.Decimal) bool {
	return requested.GreaterThan(available.Add(eps))
}
