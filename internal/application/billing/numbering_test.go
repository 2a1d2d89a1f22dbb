package billing

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// El contrato del puerto NumberGenerator: llamadas concurrentes sobre el
// mismo ámbito jamás observan el mismo número y la secuencia es monótona.
// Se verifica contra la implementación en memoria; la de Postgres ofrece la
// misma garantía vía su transacción atómica.
func TestNumberGeneratorConcurrentScope(t *testing.T) {
	gen := newMemNumberGenerator()
	year := time.Now().Year()
	const callers = 100

	results := make([]string, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(slot int) {
			defer wg.Done()
			number, err := gen.Next(context.Background(), "company-1", "store-1", year)
			assert.NoError(t, err)
			results[slot] = number
		}(i)
	}
	wg.Wait()

	seen := make(map[string]struct{}, callers)
	for _, n := range results {
		_, dup := seen[n]
		assert.False(t, dup, "número duplicado bajo concurrencia: %s", n)
		seen[n] = struct{}{}
	}
	require.Len(t, seen, callers, "cada llamada recibe un número distinto")

	// Ordenados, los números son exactamente 0001..0100 del año en curso:
	// monótonos y sin huecos cuando ninguna transacción aborta.
	sort.Strings(results)
	for i, n := range results {
		assert.Equal(t, fmt.Sprintf("%d/%04d", year, i+1), n)
	}
}

func TestNumberGeneratorScopesAreIndependent(t *testing.T) {
	gen := newMemNumberGenerator()
	ctx := context.Background()
	year := time.Now().Year()

	a1, err := gen.Next(ctx, "company-1", "store-1", year)
	require.NoError(t, err)
	b1, err := gen.Next(ctx, "company-1", "store-2", year)
	require.NoError(t, err)
	c1, err := gen.Next(ctx, "company-2", "store-1", year)
	require.NoError(t, err)
	y1, err := gen.Next(ctx, "company-1", "store-1", year+1)
	require.NoError(t, err)

	first := fmt.Sprintf("%d/0001", year)
	assert.Equal(t, first, a1)
	assert.Equal(t, first, b1, "otra tienda arranca su propia secuencia")
	assert.Equal(t, first, c1, "otra empresa arranca su propia secuencia")
	assert.Equal(t, fmt.Sprintf("%d/0001", year+1), y1, "cada año arranca en 0001")

	a2, err := gen.Next(ctx, "company-1", "store-1", year)
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("%d/0002", year), a2)
}
