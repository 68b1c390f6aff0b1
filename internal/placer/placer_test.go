package placer

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/juancollazo-ch/vtex-order-placer/internal/apperrors"
	"github.com/juancollazo-ch/vtex-order-placer/internal/config"
	"github.com/juancollazo-ch/vtex-order-placer/internal/models"
	"github.com/stretchr/testify/require"
)

// fakeAPI implementa CheckoutAPI en memoria: acepta todos los items,
// ofrece una SLA por item y coloca órdenes numeradas.
type fakeAPI struct {
	mu sync.Mutex

	candidates     []models.ItemCandidate
	profile        *models.CustomerProfile
	paymentSystems []models.PaymentSystem

	searchErr error
	failPlace map[int]bool // número de llamada (1-based) que debe fallar

	simulateCalls  int
	simulatedSizes []int
	placeCalls     int
	inFlight       int
	maxInFlight    int
	issuedTokens   map[string]string // orderGroup -> authToken
	confirmed      map[string]string // orderGroup -> token recibido
	sentPayments   []models.GatewayPayment
}

func newFakeAPI(poolSize int) *fakeAPI {
	candidates := make([]models.ItemCandidate, 0, poolSize)
	for i := 0; i < poolSize; i++ {
		candidates = append(candidates, models.ItemCandidate{
			ItemID: fmt.Sprintf("sku-%d", i),
			EAN:    fmt.Sprintf("779%04d", i),
		})
	}

	return &fakeAPI{
		candidates: candidates,
		profile: &models.CustomerProfile{
			UserProfile: &models.UserProfile{Email: "buyer@example.com"},
			AvailableAddresses: []models.Address{
				{AddressID: "home", PostalCode: "1414", Country: "ARG"},
			},
		},
		paymentSystems: []models.PaymentSystem{
			{ID: 201, Name: "Visa", GroupName: "creditCardPaymentGroup"},
		},
		failPlace:    map[int]bool{},
		issuedTokens: map[string]string{},
		confirmed:    map[string]string{},
	}
}

func (f *fakeAPI) SearchItems(context.Context) ([]models.ItemCandidate, error) {
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return f.candidates, nil
}

func (f *fakeAPI) GetProfile(context.Context, string) (*models.CustomerProfile, error) {
	return f.profile, nil
}

func (f *fakeAPI) Simulate(_ context.Context, items []models.ItemCandidate, _ models.Destination) (*models.SimulationResult, error) {
	f.mu.Lock()
	f.simulateCalls++
	f.simulatedSizes = append(f.simulatedSizes, len(items))
	f.mu.Unlock()

	result := &models.SimulationResult{
		PaymentData: models.SimulationPayment{PaymentSystems: f.paymentSystems},
	}
	for i, item := range items {
		result.Items = append(result.Items, models.SimulatedItem{
			ID:           item.ItemID,
			Quantity:     1,
			Seller:       "1",
			SellingPrice: 1000,
		})
		result.LogisticsInfo = append(result.LogisticsInfo, models.LogisticsOffer{
			ItemIndex: i,
			SLAs:      []models.SLA{{ID: "Normal", Name: "Normal", Price: 200}},
		})
	}
	return result, nil
}

func (f *fakeAPI) PlaceOrder(context.Context, *models.OrderPayload) (*models.PlacedOrder, string, error) {
	f.mu.Lock()
	f.placeCalls++
	call := f.placeCalls
	f.inFlight++
	if f.inFlight > f.maxInFlight {
		f.maxInFlight = f.inFlight
	}
	f.mu.Unlock()

	// Pequeña espera para que los pipelines del batch se solapen.
	time.Sleep(2 * time.Millisecond)

	f.mu.Lock()
	f.inFlight--
	shouldFail := f.failPlace[call]
	f.mu.Unlock()

	if shouldFail {
		return nil, "", fmt.Errorf("vtex error: status 500")
	}

	orderGroup := fmt.Sprintf("group-%d", call)
	token := fmt.Sprintf("token-%d", call)

	f.mu.Lock()
	f.issuedTokens[orderGroup] = token
	f.mu.Unlock()

	return &models.PlacedOrder{
		OrderID:    fmt.Sprintf("order-%d", call),
		OrderGroup: orderGroup,
		Value:      2400,
		PaymentData: models.PlacedPayment{
			Transactions: []models.Transaction{{TransactionID: fmt.Sprintf("tx-%d", call), MerchantName: "teststore"}},
		},
		StorePreferencesData: models.StorePreferences{CurrencyCode: "ARS"},
	}, token, nil
}

func (f *fakeAPI) SendPayment(_ context.Context, _ string, gatewayPayment models.GatewayPayment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sentPayments = append(f.sentPayments, gatewayPayment)
	return nil
}

func (f *fakeAPI) ConfirmPayment(_ context.Context, orderGroup, authToken string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.confirmed[orderGroup] = authToken
	return nil
}

func testOptions() *config.Options {
	opts := config.Default()
	opts.AccountName = "teststore"
	opts.AppKey = "key"
	opts.AppToken = "token"
	opts.CustomerEmail = "buyer@example.com"
	opts.PaymentSystemID = 201
	opts.MinItemsQuantity = 2
	opts.MaxItemsQuantity = 2
	opts.PlacedOrdersQuantity = 3
	opts.PlacedOrdersConcurrency = 2
	return opts
}

func TestRunPlacesConfiguredQuantity(t *testing.T) {
	fake := newFakeAPI(5)

	report, err := New(fake, testOptions()).Run(context.Background())
	require.NoError(t, err)
	require.NoError(t, report.PipelineErrors)

	require.Len(t, report.PlacedOrders, 3)
	require.Equal(t, 3, fake.placeCalls)
	require.LessOrEqual(t, fake.maxInFlight, 2, "no batch may exceed the concurrency ceiling")

	// Órdenes idénticas: una sola simulación compartida por los 3 pipelines.
	require.Equal(t, 1, fake.simulateCalls)
	require.Equal(t, []int{2}, fake.simulatedSizes, "min==max fixes the per-order item count")
}

func TestRunDistinctOrdersSimulatePerPipeline(t *testing.T) {
	fake := newFakeAPI(5)
	opts := testOptions()
	opts.PlaceDifferentOrders = true

	report, err := New(fake, opts).Run(context.Background())
	require.NoError(t, err)

	require.Len(t, report.PlacedOrders, 3)
	require.Equal(t, 3, fake.simulateCalls)
	for _, size := range fake.simulatedSizes {
		require.Equal(t, 2, size)
	}
}

func TestRunConfirmsWithPlacementToken(t *testing.T) {
	fake := newFakeAPI(5)

	_, err := New(fake, testOptions()).Run(context.Background())
	require.NoError(t, err)

	require.Len(t, fake.confirmed, 3)
	for orderGroup, token := range fake.confirmed {
		require.Equal(t, fake.issuedTokens[orderGroup], token)
	}

	require.Len(t, fake.sentPayments, 3)
	for _, sent := range fake.sentPayments {
		require.Equal(t, "creditCardPaymentGroup", sent.Group)
		require.Equal(t, int64(2400), sent.Value)
	}
}

func TestRunToleratesPipelineFailures(t *testing.T) {
	fake := newFakeAPI(5)
	fake.failPlace[2] = true

	report, err := New(fake, testOptions()).Run(context.Background())
	require.NoError(t, err, "a pipeline failure must not abort the run")

	require.Len(t, report.PlacedOrders, 2)
	require.Error(t, report.PipelineErrors)

	var pipelineErr *apperrors.PipelineError
	require.ErrorAs(t, report.PipelineErrors, &pipelineErr)
	require.Equal(t, "place", pipelineErr.Stage)
}

func TestRunRejectsInvalidOptions(t *testing.T) {
	fake := newFakeAPI(5)

	report, err := New(fake, &config.Options{}).Run(context.Background())

	var cfgErr *apperrors.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	require.Greater(t, len(cfgErr.Violations), 1, "all field violations surface at once")
	require.Empty(t, report.PlacedOrders)
	require.Zero(t, fake.placeCalls)
}

func TestRunFailsWithoutCandidates(t *testing.T) {
	fake := newFakeAPI(0)

	_, err := New(fake, testOptions()).Run(context.Background())

	var precondition *apperrors.PreconditionError
	require.ErrorAs(t, err, &precondition)
}

func TestRunFailsWithoutProfile(t *testing.T) {
	fake := newFakeAPI(5)
	fake.profile = &models.CustomerProfile{}

	_, err := New(fake, testOptions()).Run(context.Background())

	var precondition *apperrors.PreconditionError
	require.ErrorAs(t, err, &precondition)
}

func TestRunFailsWithoutAddresses(t *testing.T) {
	fake := newFakeAPI(5)
	fake.profile.AvailableAddresses = nil

	_, err := New(fake, testOptions()).Run(context.Background())

	var precondition *apperrors.PreconditionError
	require.ErrorAs(t, err, &precondition)
}

func TestRunAbortsWhenFetchFails(t *testing.T) {
	fake := newFakeAPI(5)
	fake.searchErr = fmt.Errorf("vtex error: status 503")

	report, err := New(fake, testOptions()).Run(context.Background())
	require.Error(t, err)
	require.Empty(t, report.PlacedOrders)
	require.Zero(t, fake.placeCalls)
}

func TestRunPaymentSystemUnavailableIsFatal(t *testing.T) {
	fake := newFakeAPI(5)
	fake.paymentSystems = []models.PaymentSystem{
		{ID: 30, Name: "Boleto", GroupName: "promissoryPaymentGroup"},
	}

	report, err := New(fake, testOptions()).Run(context.Background())

	var unavailable *apperrors.PaymentSystemUnavailableError
	require.ErrorAs(t, err, &unavailable)
	require.Equal(t, 201, unavailable.PaymentSystemID)
	require.Empty(t, report.PlacedOrders)
}

func TestRunBatchSizesCoverTotal(t *testing.T) {
	fake := newFakeAPI(10)
	opts := testOptions()
	opts.PlacedOrdersQuantity = 5
	opts.PlacedOrdersConcurrency = 2

	report, err := New(fake, opts).Run(context.Background())
	require.NoError(t, err)

	require.Len(t, report.PlacedOrders, 5, "the batch sizes must add up to the configured quantity")
	require.LessOrEqual(t, fake.maxInFlight, 2)
}
