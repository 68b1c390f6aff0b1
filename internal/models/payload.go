package models

// OrderPayload es el body del PUT /api/checkout/pub/orders. Se construye
// completo antes de enviarse y no se muta después.
type OrderPayload struct {
	Items             []OrderItem   `json:"items"`
	ClientProfileData ClientProfile `json:"clientProfileData"`
	ShippingData      ShippingData  `json:"shippingData"`
	PaymentData       PaymentData   `json:"paymentData"`
}

type OrderItem struct {
	ID           string `json:"id"`
	Quantity     int    `json:"quantity"`
	Seller       string `json:"seller"`
	Price        int64  `json:"price"`
	SellingPrice int64  `json:"sellingPrice"`
	RewardValue  int64  `json:"rewardValue"`
	Offerings    []any  `json:"offerings"`
	PriceTags    []any  `json:"priceTags"`
	IsGift       bool   `json:"isGift"`
}

type ClientProfile struct {
	Email string `json:"email"`
}

type ShippingData struct {
	ID            string              `json:"id"`
	Address       Address             `json:"address"`
	LogisticsInfo []SelectedLogistics `json:"logisticsInfo"`
}

// SelectedLogistics es la SLA elegida (y su ventana, si aplica) para un
// item dentro del payload de la orden.
type SelectedLogistics struct {
	ItemIndex      int             `json:"itemIndex"`
	SelectedSLA    string          `json:"selectedSla"`
	Price          int64           `json:"price"`
	DeliveryWindow *DeliveryWindow `json:"deliveryWindow,omitempty"`
}

type PaymentData struct {
	ID       string         `json:"id"`
	Payments []OrderPayment `json:"payments"`
}

type OrderPayment struct {
	PaymentSystem  int   `json:"paymentSystem"`
	Value          int64 `json:"value"`
	ReferenceValue int64 `json:"referenceValue"`
	Installments   int   `json:"installments"`
}

// PlaceOrderResponse envuelve las órdenes creadas por un placement.
type PlaceOrderResponse struct {
	Orders []PlacedOrder `json:"orders"`
}

// PlacedOrder es una orden ya creada, lista para el flujo de pago.
type PlacedOrder struct {
	OrderID              string           `json:"orderId"`
	OrderGroup           string           `json:"orderGroup"`
	Value                int64            `json:"value"`
	PaymentData          PlacedPayment    `json:"paymentData"`
	StorePreferencesData StorePreferences `json:"storePreferencesData"`
}

type PlacedPayment struct {
	Transactions []Transaction `json:"transactions"`
}

type Transaction struct {
	TransactionID string `json:"transactionId"`
	MerchantName  string `json:"merchantName"`
}

type StorePreferences struct {
	CurrencyCode string `json:"currencyCode"`
}

// GatewayPayment es la descripción de pago que se envía al gateway de
// transacciones (sendPayment). El body del request es un array con un
// único elemento.
type GatewayPayment struct {
	PaymentSystem            int               `json:"paymentSystem"`
	PaymentSystemName        string            `json:"paymentSystemName"`
	Group                    string            `json:"group"`
	Installments             int               `json:"installments"`
	InstallmentsInterestRate int               `json:"installmentsInterestRate"`
	InstallmentsValue        int64             `json:"installmentsValue"`
	Value                    int64             `json:"value"`
	ReferenceValue           int64             `json:"referenceValue"`
	Fields                   map[string]string `json:"fields"`
	Transaction              TransactionRef    `json:"transaction"`
	CurrencyCode             string            `json:"currencyCode"`
}

type TransactionRef struct {
	ID           string `json:"id"`
	MerchantName string `json:"merchantName"`
}
