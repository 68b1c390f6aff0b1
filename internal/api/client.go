package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/juancollazo-ch/vtex-order-placer/internal/config"
	"github.com/juancollazo-ch/vtex-order-placer/internal/logging"
	"github.com/juancollazo-ch/vtex-order-placer/internal/models"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// Endpoints públicos de VTEX. {accountName} y los path params se resuelven
// en buildURL.
const (
	searchEndpoint         = "https://{accountName}.myvtex.com/api/catalog_system/pub/products/search/"
	getProfileEndpoint     = "https://{accountName}.myvtex.com/api/checkout/pub/profiles"
	simulateEndpoint       = "https://{accountName}.myvtex.com/api/checkout/pub/orderforms/simulation"
	placeOrderEndpoint     = "https://{accountName}.myvtex.com/api/checkout/pub/orders"
	sendPaymentEndpoint    = "https://{accountName}.vtexpayments.com.br/api/pub/transactions/{orderId}/payments"
	confirmPaymentEndpoint = "https://{accountName}.myvtex.com/api/checkout/pub/gatewayCallback/{orderGroup}"
)

const authCookieName = "Vtex_CHKO_Auth"

// VtexClient habla con los APIs públicos de catálogo, checkout y pagos de
// una cuenta VTEX.
type VtexClient struct {
	http    *http.Client
	breaker *gobreaker.CircuitBreaker
	opts    *config.Options
}

func NewVtexClient(opts *config.Options) *VtexClient {
	return &VtexClient{
		http: &http.Client{Timeout: 30 * time.Second},
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name: "vtex-api",
		}),
		opts: opts,
	}
}

type callRequest struct {
	method     string
	endpoint   string
	pathParams map[string]string
	query      url.Values
	headers    map[string]string
	body       any
}

// call arma el request, lo ejecuta a través del circuit breaker y decodifica
// la respuesta JSON en out (si out no es nil). Devuelve la respuesta ya
// consumida para que el caller pueda leer headers y cookies.
func (c *VtexClient) call(ctx context.Context, cr callRequest, out any) (*http.Response, error) {
	var bodyReader io.Reader
	if cr.body != nil {
		encoded, err := json.Marshal(cr.body)
		if err != nil {
			return nil, fmt.Errorf("error encoding request body: %w", err)
		}
		bodyReader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, cr.method, buildURL(cr.endpoint, c.opts.AccountName, cr.pathParams), bodyReader)
	if err != nil {
		return nil, fmt.Errorf("error building request: %w", err)
	}

	if cr.query != nil {
		req.URL.RawQuery = cr.query.Encode()
	}

	req.Header.Set("X-VTEX-API-AppKey", c.opts.AppKey)
	req.Header.Set("X-VTEX-API-AppToken", c.opts.AppToken)
	if cr.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for name, value := range cr.headers {
		req.Header.Set(name, value)
	}

	result, err := c.breaker.Execute(func() (any, error) {
		resp, err := c.http.Do(req)
		if err != nil {
			return nil, fmt.Errorf("request error: %w", err)
		}
		defer resp.Body.Close()

		payload, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("error reading response: %w", err)
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, fmt.Errorf("vtex error: status %d on %s %s", resp.StatusCode, cr.method, req.URL.Path)
		}

		resp.Body = io.NopCloser(bytes.NewReader(payload))
		return resp, nil
	})
	if err != nil {
		return nil, err
	}

	resp := result.(*http.Response)

	zap.L().Debug("vtex call completed",
		append(logging.FieldsFromContext(ctx),
			zap.String("method", cr.method),
			zap.String("path", req.URL.Path),
			zap.Int("status", resp.StatusCode),
		)...,
	)

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return nil, fmt.Errorf("invalid JSON from VTEX: %w", err)
		}
	}

	return resp, nil
}

// buildURL reemplaza {accountName} y los path params en el template del
// endpoint.
func buildURL(endpoint, accountName string, pathParams map[string]string) string {
	built := strings.ReplaceAll(endpoint, "{accountName}", accountName)
	for name, value := range pathParams {
		built = strings.ReplaceAll(built, "{"+name+"}", url.PathEscape(value))
	}
	return built
}

// SearchItems busca SKUs en el catálogo aplicando el texto libre y el
// primer filtro estructurado configurado. Devuelve el primer SKU de cada
// producto encontrado.
func (c *VtexClient) SearchItems(ctx context.Context) ([]models.ItemCandidate, error) {
	query := url.Values{}
	query.Set("sc", fmt.Sprintf("%d", c.opts.SalesChannel))
	if c.opts.ItemsSearchText != "" {
		query.Set("ft", c.opts.ItemsSearchText)
	}
	if fq := buildFilterQuery(c.opts.ItemsSearchFilter); fq != "" {
		query.Set("fq", fq)
	}

	var products []models.SearchProduct
	_, err := c.call(ctx, callRequest{
		method:   http.MethodGet,
		endpoint: searchEndpoint,
		query:    query,
	}, &products)
	if err != nil {
		return nil, fmt.Errorf("error searching catalog: %w", err)
	}

	candidates := make([]models.ItemCandidate, 0, len(products))
	for _, product := range products {
		if len(product.Items) == 0 {
			continue
		}
		candidates = append(candidates, product.Items[0])
	}

	return candidates, nil
}

// buildFilterQuery arma el fq de búsqueda de catálogo. Solo el primer
// filtro definido se aplica, igual que la conjunción del API lo espera.
func buildFilterQuery(filter config.SearchFilter) string {
	switch {
	case filter.ProductID != "":
		return fmt.Sprintf("productId:%s", filter.ProductID)
	case filter.SkuID != "":
		return fmt.Sprintf("skuId:%s", filter.SkuID)
	case filter.ReferenceID != "":
		return fmt.Sprintf("alternateIds_RefId:%s", filter.ReferenceID)
	case filter.EAN != "":
		return fmt.Sprintf("alternateIds_Ean:%s", filter.EAN)
	case filter.CategoryTree != "":
		return fmt.Sprintf("C:%s", filter.CategoryTree)
	case len(filter.PriceRange) == 2:
		return fmt.Sprintf("P:[%v TO %v]", filter.PriceRange[0], filter.PriceRange[1])
	case filter.ClusterID != "":
		return fmt.Sprintf("productClusterIds:%s", filter.ClusterID)
	}
	return ""
}

// GetProfile busca el perfil del cliente por email.
func (c *VtexClient) GetProfile(ctx context.Context, email string) (*models.CustomerProfile, error) {
	query := url.Values{}
	query.Set("email", email)

	var profile models.CustomerProfile
	_, err := c.call(ctx, callRequest{
		method:   http.MethodGet,
		endpoint: getProfileEndpoint,
		query:    query,
	}, &profile)
	if err != nil {
		return nil, fmt.Errorf("error fetching customer profile: %w", err)
	}

	return &profile, nil
}

type simulateItem struct {
	ID       string `json:"id"`
	Quantity int    `json:"quantity"`
	Seller   string `json:"seller"`
}

type simulateRequest struct {
	Items      []simulateItem `json:"items"`
	PostalCode string         `json:"postalCode"`
	Country    string         `json:"country"`
}

// Simulate corre la simulación del orderform para los items dados contra
// el destino de entrega.
func (c *VtexClient) Simulate(ctx context.Context, items []models.ItemCandidate, dest models.Destination) (*models.SimulationResult, error) {
	body := simulateRequest{
		Items:      make([]simulateItem, 0, len(items)),
		PostalCode: dest.PostalCode,
		Country:    dest.Country,
	}
	for _, item := range items {
		body.Items = append(body.Items, simulateItem{
			ID:       item.ItemID,
			Quantity: 1,
			Seller:   c.opts.Seller,
		})
	}

	query := url.Values{}
	query.Set("sc", fmt.Sprintf("%d", c.opts.SalesChannel))

	var simulation models.SimulationResult
	_, err := c.call(ctx, callRequest{
		method:   http.MethodPost,
		endpoint: simulateEndpoint,
		query:    query,
		body:     body,
	}, &simulation)
	if err != nil {
		return nil, fmt.Errorf("error simulating order: %w", err)
	}

	return &simulation, nil
}

// PlaceOrder crea la orden y devuelve, además, el token de sesión del
// checkout que exige la confirmación del pago.
func (c *VtexClient) PlaceOrder(ctx context.Context, payload *models.OrderPayload) (*models.PlacedOrder, string, error) {
	var response models.PlaceOrderResponse
	resp, err := c.call(ctx, callRequest{
		method:   http.MethodPut,
		endpoint: placeOrderEndpoint,
		body:     payload,
	}, &response)
	if err != nil {
		return nil, "", fmt.Errorf("error placing order: %w", err)
	}

	if len(response.Orders) == 0 {
		return nil, "", fmt.Errorf("place order response carries no orders")
	}

	authToken := parseAuthToken(resp)
	if authToken == "" {
		return nil, "", fmt.Errorf("place order response carries no %s cookie", authCookieName)
	}

	return &response.Orders[0], authToken, nil
}

// parseAuthToken extrae el token de la cookie Vtex_CHKO_Auth devuelta por
// el placement.
func parseAuthToken(resp *http.Response) string {
	for _, cookie := range resp.Cookies() {
		if cookie.Name == authCookieName {
			return cookie.Value
		}
	}
	return ""
}

// SendPayment envía la descripción de pago de la orden al gateway. El body
// es un array de un solo elemento.
func (c *VtexClient) SendPayment(ctx context.Context, orderID string, gatewayPayment models.GatewayPayment) error {
	_, err := c.call(ctx, callRequest{
		method:     http.MethodPost,
		endpoint:   sendPaymentEndpoint,
		pathParams: map[string]string{"orderId": orderID},
		body:       []models.GatewayPayment{gatewayPayment},
	}, nil)
	if err != nil {
		return fmt.Errorf("error sending payment: %w", err)
	}
	return nil
}

// ConfirmPayment dispara el gateway callback del grupo de órdenes usando el
// token devuelto por el placement.
func (c *VtexClient) ConfirmPayment(ctx context.Context, orderGroup, authToken string) error {
	_, err := c.call(ctx, callRequest{
		method:     http.MethodPost,
		endpoint:   confirmPaymentEndpoint,
		pathParams: map[string]string{"orderGroup": orderGroup},
		headers:    map[string]string{"Cookie": fmt.Sprintf("%s=%s", authCookieName, authToken)},
	}, nil)
	if err != nil {
		return fmt.Errorf("error confirming payment: %w", err)
	}
	return nil
}
