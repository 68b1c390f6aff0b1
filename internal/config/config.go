package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Options es la configuración completa del order placer. No se muta
// después de cargarse.
type Options struct {
	// Account options
	AccountName string `yaml:"account_name"`
	AppKey      string `yaml:"app_key"`
	AppToken    string `yaml:"app_token"`

	// Orders options
	PlacedOrdersQuantity    int    `yaml:"placed_orders_quantity"`
	PlacedOrdersConcurrency int    `yaml:"placed_orders_concurrency"`
	PlaceDifferentOrders    bool   `yaml:"place_different_orders"`
	SalesChannel            int    `yaml:"sales_channel"`
	Seller                  string `yaml:"seller"`

	// Items options
	ItemsSearchText   string       `yaml:"items_search_text"`
	ItemsSearchFilter SearchFilter `yaml:"items_search_filter"`
	MinItemsQuantity  int          `yaml:"min_items_quantity"`
	MaxItemsQuantity  int          `yaml:"max_items_quantity"`

	// Customer options
	CustomerEmail string `yaml:"customer_email"`

	// Shipping options. Si delivery_postal_code queda vacío, el destino se
	// deriva de la primera dirección del perfil.
	Country             string `yaml:"country"`
	DeliveryPostalCode  string `yaml:"delivery_postal_code"`
	InteractiveShipping bool   `yaml:"interactive_shipping"`

	// Payment options
	PaymentSystemID int `yaml:"payment_system_id"`
}

// SearchFilter restringe la búsqueda de items en el catálogo. Solo se
// aplica el primer filtro no vacío, en este orden.
type SearchFilter struct {
	ProductID    string    `yaml:"product_id"`
	SkuID        string    `yaml:"sku_id"`
	ReferenceID  string    `yaml:"reference_id"`
	EAN          string    `yaml:"ean"`
	CategoryTree string    `yaml:"category_tree"`
	PriceRange   []float64 `yaml:"price_range"`
	ClusterID    string    `yaml:"cluster_id"`
}

// Default devuelve las opciones con sus valores por defecto.
func Default() *Options {
	return &Options{
		PlacedOrdersQuantity:    1,
		PlacedOrdersConcurrency: 1,
		SalesChannel:            1,
		Seller:                  "1",
		MinItemsQuantity:        1,
		MaxItemsQuantity:        1,
		Country:                 "ARG",
	}
}

// Load lee el archivo YAML en path sobre los defaults y después aplica los
// overrides por variables de entorno.
func Load(path string) (*Options, error) {
	opts := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, opts); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	applyEnvOverrides(opts)

	return opts, nil
}

// applyEnvOverrides pisa las credenciales con variables de entorno cuando
// están definidas, para no obligar a guardarlas en el archivo.
func applyEnvOverrides(opts *Options) {
	if v := os.Getenv("VTEX_ACCOUNT"); v != "" {
		opts.AccountName = v
	}
	if v := os.Getenv("VTEX_APP_KEY"); v != "" {
		opts.AppKey = v
	}
	if v := os.Getenv("VTEX_APP_TOKEN"); v != "" {
		opts.AppToken = v
	}
	if v := os.Getenv("VTEX_CUSTOMER_EMAIL"); v != "" {
		opts.CustomerEmail = v
	}
}
