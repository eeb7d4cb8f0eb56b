package transfer_test

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Farmacia-api/internal/domain/transfer"
)

// ──────────────────────────────────────────────────────────────────────────────
// Tests del generador de códigos de verificación.
//
// Los códigos protegen el flujo de traslado: 6 dígitos decimales exactos en el
// rango [100000, 999999], siempre sin ceros a la izquierda. El sorteo usa
// crypto/rand, así que los tests validan propiedades, no valores.
// ──────────────────────────────────────────────────────────────────────────────

func TestPair_SeisDigitosExactos(t *testing.T) {
	g := transfer.NewCodeGenerator()

	for i := 0; i < 200; i++ {
		keeper, controller, err := g.Pair()
		require.NoError(t, err)

		assert.Len(t, keeper, 6, "el código del bodeguero debe tener 6 dígitos")
		assert.Len(t, controller, 6, "el código del controlador debe tener 6 dígitos")
	}
}

func TestPair_RangoValido(t *testing.T) {
	g := transfer.NewCodeGenerator()

	for i := 0; i < 200; i++ {
		keeper, controller, err := g.Pair()
		require.NoError(t, err)

		for _, code := range []string{keeper, controller} {
			n, err := strconv.Atoi(code)
			require.NoError(t, err, "el código debe ser numérico decimal: %q", code)
			assert.GreaterOrEqual(t, n, 100000, "el código no puede tener ceros a la izquierda")
			assert.LessOrEqual(t, n, 999999)
		}
	}
}

// TestPair_NoConstante verifica que el generador no está degenerado en un
// valor fijo. Con 50 sorteos la probabilidad de repetir siempre el mismo
// código es despreciable.
func TestPair_NoConstante(t *testing.T) {
	g := transfer.NewCodeGenerator()

	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		keeper, _, err := g.Pair()
		require.NoError(t, err)
		seen[keeper] = true
	}
	assert.Greater(t, len(seen), 1, "50 sorteos no pueden producir siempre el mismo código")
}
