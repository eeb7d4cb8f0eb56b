// Package transfer contiene los servicios de dominio del flujo de traslados.
package transfer

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// codeSpan define el rango de códigos de verificación: 100000–999999
// inclusive (siempre 6 dígitos, sin ceros a la izquierda).
const (
	codeMin  = 100000
	codeSpan = 900000
)

// CodeGenerator produce los dos códigos de verificación de un traslado.
// Generación pura, sin efectos secundarios; los códigos de cada traslado son
// sorteos independientes (la colisión entre traslados se acepta como
// despreciable). No se exige que keeper y controller difieran entre sí.
type CodeGenerator struct{}

// NewCodeGenerator construye el generador.
func NewCodeGenerator() *CodeGenerator { return &CodeGenerator{} }

// Pair genera los códigos del bodeguero y del controlador, independientes
// entre sí, como cadenas decimales de ancho fijo 6.
func (g *CodeGenerator) Pair() (keeperCode, controllerCode string, err error) {
	keeperCode, err = randomCode()
	if err != nil {
		return "", "", err
	}
	controllerCode, err = randomCode()
	if err != nil {
		return "", "", err
	}
	return keeperCode, controllerCode, nil
}

// randomCode sortea un código uniforme en [100000, 999999] con crypto/rand.
func randomCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(codeSpan))
	if err != nil {
		return "", fmt.Errorf("generar código de verificación: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()+codeMin), nil
}
