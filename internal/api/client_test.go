package api

import (
	"net/http"
	"testing"

	"github.com/juancollazo-ch/vtex-order-placer/internal/config"
	"github.com/stretchr/testify/require"
)

func TestBuildURLReplacesAccountAndPathParams(t *testing.T) {
	url := buildURL(sendPaymentEndpoint, "teststore", map[string]string{"orderId": "1234567890-01"})
	require.Equal(t, "https://teststore.vtexpayments.com.br/api/pub/transactions/1234567890-01/payments", url)

	url = buildURL(placeOrderEndpoint, "teststore", nil)
	require.Equal(t, "https://teststore.myvtex.com/api/checkout/pub/orders", url)
}

func TestBuildFilterQueryUsesFirstConfiguredFilter(t *testing.T) {
	tests := []struct {
		name   string
		filter config.SearchFilter
		want   string
	}{
		{"none", config.SearchFilter{}, ""},
		{"productId", config.SearchFilter{ProductID: "12"}, "productId:12"},
		{"skuId", config.SearchFilter{SkuID: "34"}, "skuId:34"},
		{"referenceId", config.SearchFilter{ReferenceID: "REF-1"}, "alternateIds_RefId:REF-1"},
		{"ean", config.SearchFilter{EAN: "7791234567890"}, "alternateIds_Ean:7791234567890"},
		{"categoryTree", config.SearchFilter{CategoryTree: "10/20"}, "C:10/20"},
		{"priceRange", config.SearchFilter{PriceRange: []float64{100, 500}}, "P:[100 TO 500]"},
		{"clusterId", config.SearchFilter{ClusterID: "77"}, "productClusterIds:77"},
		{"precedence", config.SearchFilter{ProductID: "12", EAN: "779"}, "productId:12"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, buildFilterQuery(tt.filter))
		})
	}
}

func TestParseAuthToken(t *testing.T) {
	resp := &http.Response{Header: http.Header{}}
	resp.Header.Add("Set-Cookie", "checkout.vtex.com=cart-id; Path=/")
	resp.Header.Add("Set-Cookie", "Vtex_CHKO_Auth=abc123token; Path=/; HttpOnly")

	require.Equal(t, "abc123token", parseAuthToken(resp))
}

func TestParseAuthTokenMissingCookie(t *testing.T) {
	resp := &http.Response{Header: http.Header{}}
	resp.Header.Add("Set-Cookie", "checkout.vtex.com=cart-id; Path=/")

	require.Equal(t, "", parseAuthToken(resp))
}
