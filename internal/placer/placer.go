package placer

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/juancollazo-ch/vtex-order-placer/internal/apperrors"
	"github.com/juancollazo-ch/vtex-order-placer/internal/checkout"
	"github.com/juancollazo-ch/vtex-order-placer/internal/config"
	"github.com/juancollazo-ch/vtex-order-placer/internal/logging"
	"github.com/juancollazo-ch/vtex-order-placer/internal/logistics"
	"github.com/juancollazo-ch/vtex-order-placer/internal/models"
	"github.com/juancollazo-ch/vtex-order-placer/internal/payment"
	"github.com/juancollazo-ch/vtex-order-placer/internal/simulation"
	"github.com/juancollazo-ch/vtex-order-placer/internal/validator"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// CheckoutAPI es la capability externa de catálogo, checkout y pagos.
type CheckoutAPI interface {
	SearchItems(ctx context.Context) ([]models.ItemCandidate, error)
	GetProfile(ctx context.Context, email string) (*models.CustomerProfile, error)
	Simulate(ctx context.Context, items []models.ItemCandidate, dest models.Destination) (*models.SimulationResult, error)
	PlaceOrder(ctx context.Context, payload *models.OrderPayload) (*models.PlacedOrder, string, error)
	SendPayment(ctx context.Context, orderID string, gatewayPayment models.GatewayPayment) error
	ConfirmPayment(ctx context.Context, orderGroup, authToken string) error
}

// Report acumula el resultado de una corrida. PipelineErrors junta las
// fallas toleradas de pipelines individuales; no afectan el exit status.
type Report struct {
	PlacedOrders   []string
	PipelineErrors error
}

// OrderPlacer es el driver de la corrida: valida opciones, trae catálogo y
// perfil, y coloca las órdenes en batches acotados por la concurrencia
// configurada.
type OrderPlacer struct {
	api      CheckoutAPI
	opts     *config.Options
	prompter logistics.Prompter
}

func New(api CheckoutAPI, opts *config.Options) *OrderPlacer {
	var prompter logistics.Prompter = logistics.FirstOptionPrompter{}
	if opts.InteractiveShipping {
		prompter = logistics.NewTerminalPrompter(os.Stdin, os.Stdout)
	}

	return &OrderPlacer{
		api:      api,
		opts:     opts,
		prompter: prompter,
	}
}

// WithPrompter reemplaza el prompter de logística. Pensado para tests y
// para integrar otra UI de selección.
func (p *OrderPlacer) WithPrompter(prompter logistics.Prompter) *OrderPlacer {
	p.prompter = prompter
	return p
}

// Run ejecuta la corrida completa. El Report devuelto siempre es usable:
// ante una falla a mitad de camino conserva las órdenes ya colocadas.
func (p *OrderPlacer) Run(ctx context.Context) (*Report, error) {
	report := &Report{}

	if cfgErr := validator.NewOptionsValidator().Validate(p.opts); cfgErr != nil {
		return report, cfgErr
	}

	ctx = logging.WithRunID(ctx, uuid.NewString())
	logger := zap.L().With(logging.FieldsFromContext(ctx)...)

	p.logRunBanner(logger)

	logger.Info("fetching catalog and customer data")
	candidates, profile, err := p.fetchInputs(ctx)
	if err != nil {
		return report, err
	}

	if len(candidates) == 0 {
		return report, &apperrors.PreconditionError{Reason: "no deliverable items found for the configured search"}
	}
	if !profile.Exists() {
		return report, &apperrors.PreconditionError{Reason: fmt.Sprintf("no profile found for %s", p.opts.CustomerEmail)}
	}
	if len(profile.AvailableAddresses) == 0 {
		return report, &apperrors.PreconditionError{Reason: fmt.Sprintf("profile %s has no available addresses", p.opts.CustomerEmail)}
	}

	dest := p.resolveDestination(profile)
	itemsQuantity := p.drawItemsQuantity()

	simulate := func(ctx context.Context, items []models.ItemCandidate) (*models.SimulationResult, error) {
		return p.api.Simulate(ctx, items, dest)
	}

	var runner simulation.Runner = simulation.NewEngine(simulate)
	if !p.opts.PlaceDifferentOrders {
		// Órdenes idénticas: una única simulación compartida por todos los
		// pipelines.
		runner = simulation.NewCachedRunner(runner)
	}

	remaining := p.opts.PlacedOrdersQuantity
	for remaining > 0 {
		batchSize := remaining
		if batchSize > p.opts.PlacedOrdersConcurrency {
			batchSize = p.opts.PlacedOrdersConcurrency
		}

		logger.Info("placing orders", zap.Int("batch_size", batchSize))

		orderIDs, batchErr := p.placeBatch(ctx, runner, candidates, profile, itemsQuantity, batchSize)
		report.PlacedOrders = append(report.PlacedOrders, orderIDs...)
		report.PipelineErrors = multierr.Append(report.PipelineErrors, batchErr)

		if fatal := fatalBatchError(batchErr); fatal != nil {
			return report, fatal
		}

		logger.Info("batch done", zap.Int("orders_placed", len(orderIDs)))

		remaining -= batchSize
	}

	return report, nil
}

// fetchInputs trae catálogo y perfil en paralelo. La falla de cualquiera
// aborta la corrida completa.
func (p *OrderPlacer) fetchInputs(ctx context.Context) ([]models.ItemCandidate, *models.CustomerProfile, error) {
	var candidates []models.ItemCandidate
	var profile *models.CustomerProfile

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		candidates, err = p.api.SearchItems(gctx)
		return err
	})

	g.Go(func() error {
		var err error
		profile, err = p.api.GetProfile(gctx, p.opts.CustomerEmail)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	return candidates, profile, nil
}

// placeBatch dispara batchSize pipelines concurrentes y espera a todos.
// Cada pipeline es independiente: una falla se registra y ese pipeline no
// aporta orden, sin abortar el batch.
func (p *OrderPlacer) placeBatch(
	ctx context.Context,
	runner simulation.Runner,
	candidates []models.ItemCandidate,
	profile *models.CustomerProfile,
	itemsQuantity int,
	batchSize int,
) ([]string, error) {

	orderIDs := make([]string, batchSize)
	pipelineErrs := make([]error, batchSize)

	var wg sync.WaitGroup
	for slot := 0; slot < batchSize; slot++ {
		wg.Add(1)

		go func(slot int) {
			defer wg.Done()

			orderSeq := uuid.NewString()
			pipelineCtx := logging.WithOrderSeq(ctx, orderSeq)

			orderID, err := p.placeAndFulfilOrder(pipelineCtx, runner, candidates, profile, itemsQuantity)
			if err != nil {
				pipelineErrs[slot] = err
				zap.L().Error("order pipeline failed",
					append(logging.FieldsFromContext(pipelineCtx), zap.Error(err))...,
				)
				return
			}

			orderIDs[slot] = orderID
		}(slot)
	}
	wg.Wait()

	placed := make([]string, 0, batchSize)
	for _, orderID := range orderIDs {
		if orderID != "" {
			placed = append(placed, orderID)
		}
	}

	return placed, multierr.Combine(pipelineErrs...)
}

// placeAndFulfilOrder corre el pipeline completo de una orden: simular,
// resolver logística, colocar, pagar y confirmar. Los pasos son
// estrictamente secuenciales; el token devuelto por el placement es
// requisito de la confirmación.
func (p *OrderPlacer) placeAndFulfilOrder(
	ctx context.Context,
	runner simulation.Runner,
	candidates []models.ItemCandidate,
	profile *models.CustomerProfile,
	itemsQuantity int,
) (string, error) {

	orderSeq, _ := ctx.Value(logging.OrderSeqKey).(string)
	stageErr := func(stage string, err error) error {
		return &apperrors.PipelineError{OrderSeq: orderSeq, Stage: stage, Err: err}
	}

	simulationResult, err := runner.Run(ctx, candidates, itemsQuantity)
	if err != nil {
		return "", stageErr("simulate", err)
	}

	selected, err := logistics.NewSelector(p.prompter).SelectAll(simulationResult.LogisticsInfo)
	if err != nil {
		return "", stageErr("select-logistics", err)
	}

	payload := checkout.BuildOrderPayload(simulationResult, profile, selected, p.opts.PaymentSystemID)

	order, authToken, err := p.api.PlaceOrder(ctx, payload)
	if err != nil {
		return "", stageErr("place", err)
	}

	gatewayPayment, err := payment.BuildGatewayPayment(order, simulationResult, profile, p.opts.PaymentSystemID, time.Now())
	if err != nil {
		return "", stageErr("build-payment", err)
	}

	if err := p.api.SendPayment(ctx, order.OrderID, gatewayPayment); err != nil {
		return "", stageErr("send-payment", err)
	}

	if err := p.api.ConfirmPayment(ctx, order.OrderGroup, authToken); err != nil {
		return "", stageErr("confirm-payment", err)
	}

	return order.OrderID, nil
}

// fatalBatchError detecta dentro de las fallas toleradas de un batch las
// que igualmente terminan la corrida: simulación irreparable y sistema de
// pago no ofrecido.
func fatalBatchError(batchErr error) error {
	for _, err := range multierr.Errors(batchErr) {
		var unrepairable *apperrors.UnrepairableError
		if errors.As(err, &unrepairable) {
			return unrepairable
		}

		var unavailable *apperrors.PaymentSystemUnavailableError
		if errors.As(err, &unavailable) {
			return unavailable
		}
	}
	return nil
}

// drawItemsQuantity sortea la cantidad de items por orden dentro del rango
// configurado. Se sortea una sola vez por corrida.
func (p *OrderPlacer) drawItemsQuantity() int {
	min := p.opts.MinItemsQuantity
	max := p.opts.MaxItemsQuantity
	return int(math.Round(rand.Float64()*float64(max-min))) + min
}

// resolveDestination usa el código postal configurado o, si falta, el de
// la primera dirección del perfil.
func (p *OrderPlacer) resolveDestination(profile *models.CustomerProfile) models.Destination {
	if p.opts.DeliveryPostalCode != "" {
		return models.Destination{
			PostalCode: p.opts.DeliveryPostalCode,
			Country:    p.opts.Country,
		}
	}

	address := profile.AvailableAddresses[0]
	return models.Destination{
		PostalCode: address.PostalCode,
		Country:    address.Country,
	}
}

func (p *OrderPlacer) logRunBanner(logger *zap.Logger) {
	itemsQuantityMessage := fmt.Sprintf("%d", p.opts.MinItemsQuantity)
	if p.opts.MinItemsQuantity != p.opts.MaxItemsQuantity {
		itemsQuantityMessage = fmt.Sprintf("%d to %d", p.opts.MinItemsQuantity, p.opts.MaxItemsQuantity)
	}

	logger.Info(fmt.Sprintf("Processing for VTEX account %s", p.opts.AccountName))
	logger.Info(fmt.Sprintf("Will create %d orders of %s items each.", p.opts.PlacedOrdersQuantity, itemsQuantityMessage))
}
