// Package fiscal contiene reglas fiscales portuguesas compartidas:
// validación del NIF (Número de Identificação Fiscal) y formato de
// numeración secuencial de facturas.
package fiscal

import "fmt"

// pesos para el dígito de control del NIF portugués (módulo 11).
// Se aplican a los 8 primeros dígitos, de izquierda a derecha.
var nifWeights = [8]int{9, 8, 7, 6, 5, 4, 3, 2}

// ValidateNIF valida que el NIF tenga exactamente 9 dígitos y un dígito de
// control correcto según el algoritmo módulo 11 de la AT portuguesa.
// nif puede incluir espacios o puntos ("123 456 789"); se ignoran.
func ValidateNIF(nif string) error {
	digits := extractDigits(nif)
	if len(digits) != 9 {
		return fmt.Errorf("fiscal: NIF debe tener 9 dígitos, se encontraron %d", len(digits))
	}
	expected := checkDigit(digits[:8])
	if digits[8] != expected {
		return fmt.Errorf("fiscal: dígito de control del NIF inválido: esperado %c, recibido %c", expected, digits[8])
	}
	return nil
}

// ComputeNIFCheckDigit calcula el dígito de control para los 8 primeros
// dígitos del NIF. Útil para generar NIFs de prueba.
func ComputeNIFCheckDigit(nif string) (byte, error) {
	digits := extractDigits(nif)
	if len(digits) < 8 {
		return 0, fmt.Errorf("fiscal: se requieren al menos 8 dígitos, se encontraron %d", len(digits))
	}
	return checkDigit(digits[:8]), nil
}

// checkDigit aplica módulo 11: suma ponderada de los 8 primeros dígitos,
// control = 11 - (suma mod 11); si el resultado es >= 10 se toma 0.
func checkDigit(base []byte) byte {
	var sum int
	for i, d := range base {
		sum += int(d-'0') * nifWeights[i]
	}
	control := 11 - sum%11
	if control >= 10 {
		control = 0
	}
	return byte('0' + control)
}

// extractDigits conserva solo dígitos ASCII '0'-'9'. Dígitos de otros
// alfabetos (p. ej. arábigo-índicos) no son válidos en un NIF y se descartan,
// con lo que la validación de longitud los rechaza.
func extractDigits(s string) []byte {
	var out []byte
	for _, r := range s {
		if r >= '0' && r <= '9' {
			out = append(out, byte(r))
		}
	}
	return out
}
