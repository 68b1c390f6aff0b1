package payment

import (
	"fmt"
	"regexp"
	"time"

	"github.com/juancollazo-ch/vtex-order-placer/internal/apperrors"
	"github.com/juancollazo-ch/vtex-order-placer/internal/models"
)

// Grupos de pago que exigen datos de tarjeta. customPrivate_4xx cubre las
// tarjetas de marca privada con subcódigo 4xx.
var cardGroups = map[string]bool{
	"creditCardPaymentGroup": true,
	"debitCardPaymentGroup":  true,
}

var privateCardGroupRegex = regexp.MustCompile(`^customPrivate_4\d{2}$`)

// Datos de la tarjeta de prueba. No corresponden a una tarjeta real.
const (
	testCardHolder = "Order Placer"
	testCardNumber = "4111 1111 1111 1111"
	testCardCVV    = "123"
)

// OrderValue computa el total de la orden: precio de venta de cada item,
// más el precio de cada tramo logístico, más el precio de la ventana de
// entrega cuando se eligió una.
func OrderValue(items []models.SimulatedItem, logisticsInfo []models.SelectedLogistics) int64 {
	var value int64
	for _, item := range items {
		value += item.SellingPrice
	}
	for _, logistic := range logisticsInfo {
		value += logistic.Price
		if logistic.DeliveryWindow != nil {
			value += logistic.DeliveryWindow.Price
		}
	}
	return value
}

// BuildOrderPayments arma el bloque de pagos del payload de la orden:
// una sola cuota contra el sistema de pago configurado.
func BuildOrderPayments(paymentSystemID int, value int64) models.PaymentData {
	return models.PaymentData{
		ID: "paymentData",
		Payments: []models.OrderPayment{{
			PaymentSystem:  paymentSystemID,
			Value:          value,
			ReferenceValue: value,
			Installments:   1,
		}},
	}
}

// BuildGatewayPayment arma la descripción de pago para el gateway a partir
// de la orden ya colocada. El contenido de fields depende del grupo del
// sistema de pago: los grupos de tarjeta reciben el bloque de tarjeta de
// prueba, el resto queda vacío.
func BuildGatewayPayment(
	order *models.PlacedOrder,
	simulation *models.SimulationResult,
	profile *models.CustomerProfile,
	paymentSystemID int,
	now time.Time,
) (models.GatewayPayment, error) {

	system, found := lookupPaymentSystem(simulation, paymentSystemID)
	if !found {
		available := make([]string, 0, len(simulation.PaymentData.PaymentSystems))
		for _, offered := range simulation.PaymentData.PaymentSystems {
			available = append(available, fmt.Sprintf("%d (%s)", offered.ID, offered.Name))
		}
		return models.GatewayPayment{}, &apperrors.PaymentSystemUnavailableError{
			PaymentSystemID: paymentSystemID,
			Available:       available,
		}
	}

	if len(order.PaymentData.Transactions) == 0 {
		return models.GatewayPayment{}, fmt.Errorf("placed order %s carries no transactions", order.OrderID)
	}
	transaction := order.PaymentData.Transactions[0]

	fields := map[string]string{}
	if requiresCardFields(system.GroupName) {
		fields = cardFields(profile, now)
	}

	return models.GatewayPayment{
		PaymentSystem:            system.ID,
		PaymentSystemName:        system.Name,
		Group:                    system.GroupName,
		Installments:             1,
		InstallmentsInterestRate: 0,
		InstallmentsValue:        order.Value,
		Value:                    order.Value,
		ReferenceValue:           order.Value,
		Fields:                   fields,
		Transaction: models.TransactionRef{
			ID:           transaction.TransactionID,
			MerchantName: transaction.MerchantName,
		},
		CurrencyCode: order.StorePreferencesData.CurrencyCode,
	}, nil
}

func lookupPaymentSystem(simulation *models.SimulationResult, paymentSystemID int) (models.PaymentSystem, bool) {
	for _, system := range simulation.PaymentData.PaymentSystems {
		if system.ID == paymentSystemID {
			return system, true
		}
	}
	return models.PaymentSystem{}, false
}

func requiresCardFields(groupName string) bool {
	return cardGroups[groupName] || privateCardGroupRegex.MatchString(groupName)
}

// cardFields arma el bloque de tarjeta de prueba. El vencimiento es el mes
// corriente del año siguiente.
func cardFields(profile *models.CustomerProfile, now time.Time) map[string]string {
	return map[string]string{
		"holderName":     testCardHolder,
		"cardNumber":     testCardNumber,
		"validationCode": testCardCVV,
		"dueDate":        fmt.Sprintf("%02d/%02d", int(now.Month()), (now.Year()+1)%100),
		"addressId":      profile.AvailableAddresses[0].AddressID,
	}
}
