package models

// CustomerProfile es la respuesta del endpoint de perfiles del checkout.
type CustomerProfile struct {
	UserProfile        *UserProfile `json:"userProfile"`
	AvailableAddresses []Address    `json:"availableAddresses"`
}

type UserProfile struct {
	Email string `json:"email"`
}

// Exists reporta si VTEX conoce al cliente. El endpoint responde 200 con
// userProfile en null cuando el email no está registrado.
func (p *CustomerProfile) Exists() bool {
	return p != nil && p.UserProfile != nil
}

type Address struct {
	AddressID    string `json:"addressId"`
	AddressType  string `json:"addressType,omitempty"`
	ReceiverName string `json:"receiverName,omitempty"`
	Street       string `json:"street,omitempty"`
	Number       string `json:"number,omitempty"`
	Complement   string `json:"complement,omitempty"`
	Neighborhood string `json:"neighborhood,omitempty"`
	City         string `json:"city,omitempty"`
	State        string `json:"state,omitempty"`
	Country      string `json:"country"`
	PostalCode   string `json:"postalCode"`
}

// Destination es el destino de entrega usado para simular el carrito.
type Destination struct {
	PostalCode string
	Country    string
}

// SimulationResult es la respuesta de la simulación del orderform.
type SimulationResult struct {
	Items         []SimulatedItem   `json:"items"`
	LogisticsInfo []LogisticsOffer  `json:"logisticsInfo"`
	PaymentData   SimulationPayment `json:"paymentData"`
	Messages      []Message         `json:"messages"`
}

// Valid reporta si la simulación aceptó todos los items pedidos sin
// mensajes de validación.
func (s *SimulationResult) Valid(requested int) bool {
	return len(s.Items) == requested && len(s.Messages) == 0
}

type SimulatedItem struct {
	ID           string   `json:"id"`
	Quantity     int      `json:"quantity"`
	Seller       string   `json:"seller"`
	Price        int64    `json:"price"`
	SellingPrice int64    `json:"sellingPrice"`
	RewardValue  int64    `json:"rewardValue"`
	Offerings    []any    `json:"offerings"`
	PriceTags    []any    `json:"priceTags"`
	IsGift       bool     `json:"isGift"`
}

// LogisticsOffer son las SLAs ofrecidas para un item de la simulación.
type LogisticsOffer struct {
	ItemIndex int   `json:"itemIndex"`
	SLAs      []SLA `json:"slas"`
}

type SLA struct {
	ID                       string           `json:"id"`
	Name                     string           `json:"name"`
	Price                    int64            `json:"price"`
	AvailableDeliveryWindows []DeliveryWindow `json:"availableDeliveryWindows"`
}

type DeliveryWindow struct {
	StartDateUTC string `json:"startDateUtc"`
	EndDateUTC   string `json:"endDateUtc"`
	Price        int64  `json:"price"`
}

// Equal compara dos ventanas de entrega por valor (inicio, fin y precio).
func (w DeliveryWindow) Equal(other DeliveryWindow) bool {
	return w.StartDateUTC == other.StartDateUTC &&
		w.EndDateUTC == other.EndDateUTC &&
		w.Price == other.Price
}

type SimulationPayment struct {
	PaymentSystems []PaymentSystem `json:"paymentSystems"`
}

type PaymentSystem struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	GroupName string `json:"groupName"`
}

// Message es un mensaje de validación de la simulación. VTEX referencia el
// item problemático por su EAN.
type Message struct {
	Code   string        `json:"code"`
	Text   string        `json:"text"`
	Status string        `json:"status"`
	Fields MessageFields `json:"fields"`
}

type MessageFields struct {
	EAN       string `json:"ean"`
	ItemIndex string `json:"itemIndex"`
	SkuName   string `json:"skuName"`
}
