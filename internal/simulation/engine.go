package simulation

import (
	"context"
	"fmt"
	"math/rand"
	"sync"

	"github.com/juancollazo-ch/vtex-order-placer/internal/apperrors"
	"github.com/juancollazo-ch/vtex-order-placer/internal/logging"
	"github.com/juancollazo-ch/vtex-order-placer/internal/models"
	"go.uber.org/zap"
)

// maxAttempts acota el loop de reparación. Si después de 5 simulaciones el
// carrito sigue inválido, el catálogo no da abasto o el código postal no
// es entregable.
const maxAttempts = 5

// SimulateFunc es la capability externa de simulación del carrito.
type SimulateFunc func(ctx context.Context, items []models.ItemCandidate) (*models.SimulationResult, error)

// Runner produce una simulación válida a partir de un pool de candidatos.
type Runner interface {
	Run(ctx context.Context, pool []models.ItemCandidate, n int) (*models.SimulationResult, error)
}

// Engine repara el carrito iterativamente: simula los primeros n candidatos
// de un pool mezclado y, ante mensajes de validación, descarta del pool los
// candidatos cuyo EAN aparece referenciado y vuelve a simular.
type Engine struct {
	simulate SimulateFunc
}

func NewEngine(simulate SimulateFunc) *Engine {
	return &Engine{simulate: simulate}
}

// Run intenta hasta maxAttempts veces llegar a una simulación válida de n
// items. Corta de inmediato cuando el pool queda más chico que n.
func (e *Engine) Run(ctx context.Context, pool []models.ItemCandidate, n int) (*models.SimulationResult, error) {
	if n <= 0 {
		return nil, fmt.Errorf("requested item count must be positive, got %d", n)
	}

	// Copia mezclada para que corridas repetidas muestreen subsets
	// distintos sin tocar el pool del caller.
	shuffled := make([]models.ItemCandidate, len(pool))
	copy(shuffled, pool)
	rand.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	var lastMessages []string

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if len(shuffled) < n {
			return nil, &apperrors.UnrepairableError{
				Attempts: attempt - 1,
				Messages: append(lastMessages, fmt.Sprintf("only %d candidates left for %d items", len(shuffled), n)),
			}
		}

		working := shuffled[:n]

		result, err := e.simulate(ctx, working)
		if err != nil {
			return nil, err
		}

		if result.Valid(n) {
			return result, nil
		}

		lastMessages = renderMessages(result.Messages)

		zap.L().Warn("simulation invalid, discarding flagged items",
			append(logging.FieldsFromContext(ctx),
				zap.Int("attempt", attempt),
				zap.Int("accepted_items", len(result.Items)),
				zap.Strings("messages", lastMessages),
			)...,
		)

		shuffled = discardFlagged(shuffled, result.Messages)
	}

	return nil, &apperrors.UnrepairableError{
		Attempts: maxAttempts,
		Messages: lastMessages,
	}
}

// discardFlagged saca del pool todo candidato cuyo EAN esté referenciado
// por algún mensaje de validación.
func discardFlagged(pool []models.ItemCandidate, messages []models.Message) []models.ItemCandidate {
	flagged := make(map[string]bool, len(messages))
	for _, message := range messages {
		if message.Fields.EAN != "" {
			flagged[message.Fields.EAN] = true
		}
	}

	kept := pool[:0]
	for _, candidate := range pool {
		if !flagged[candidate.EAN] {
			kept = append(kept, candidate)
		}
	}
	return kept
}

func renderMessages(messages []models.Message) []string {
	rendered := make([]string, 0, len(messages))
	for _, message := range messages {
		rendered = append(rendered, fmt.Sprintf("%s: %s", message.Code, message.Text))
	}
	return rendered
}

// CachedRunner memoiza la primera simulación exitosa (o su error) y la
// comparte entre todos los pipelines. sync.Once garantiza una única
// simulación en vuelo aunque el primer acceso sea concurrente.
type CachedRunner struct {
	runner Runner

	once   sync.Once
	result *models.SimulationResult
	err    error
}

func NewCachedRunner(runner Runner) *CachedRunner {
	return &CachedRunner{runner: runner}
}

func (c *CachedRunner) Run(ctx context.Context, pool []models.ItemCandidate, n int) (*models.SimulationResult, error) {
	c.once.Do(func() {
		c.result, c.err = c.runner.Run(ctx, pool, n)
	})
	return c.result, c.err
}
