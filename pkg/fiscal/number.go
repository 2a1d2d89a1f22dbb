package fiscal

import (
	"fmt"
	"regexp"
)

// InvoiceNumberPattern es el formato legal de numeración: AAAA/NNNN,
// con el secuencial en cuatro dígitos rellenados con ceros.
var InvoiceNumberPattern = regexp.MustCompile(`^\d{4}/\d{4}$`)

// FormatInvoiceNumber produce el número fiscal "AAAA/NNNN" para un año y un
// secuencial dentro del ámbito (empresa, tienda, año). El secuencial
// arranca en 1 cada año; por encima de 9999 el padding crece sin truncar.
func FormatInvoiceNumber(year, seq int) string {
	return fmt.Sprintf("%04d/%04d", year, seq)
}

// IsInvoiceNumber indica si s tiene el formato legal AAAA/NNNN.
func IsInvoiceNumber(s string) bool {
	return InvoiceNumberPattern.MatchString(s)
}
