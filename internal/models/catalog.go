package models

// SearchProduct es un producto devuelto por la búsqueda del catálogo.
// Cada producto trae uno o más SKUs; el placer trabaja con el primero.
type SearchProduct struct {
	ProductID   string          `json:"productId"`
	ProductName string          `json:"productName"`
	Items       []ItemCandidate `json:"items"`
}

// ItemCandidate es un SKU candidato a formar parte de una orden.
type ItemCandidate struct {
	ItemID      string      `json:"itemId"`
	Name        string      `json:"name"`
	EAN         string      `json:"ean"`
	ReferenceID []RefID     `json:"referenceId"`
	Sellers     []SKUSeller `json:"sellers"`
}

type RefID struct {
	Key   string `json:"Key"`
	Value string `json:"Value"`
}

type SKUSeller struct {
	SellerID string          `json:"sellerId"`
	Offer    CommertialOffer `json:"commertialOffer"`
}

// CommertialOffer mantiene el nombre (con typo incluido) del API de VTEX.
type CommertialOffer struct {
	Price       float64 `json:"Price"`
	IsAvailable bool    `json:"IsAvailable"`
}

// Available reporta si algún seller tiene stock para el SKU.
func (c ItemCandidate) Available() bool {
	for _, s := range c.Sellers {
		if s.Offer.IsAvailable {
			return true
		}
	}
	return false
}
