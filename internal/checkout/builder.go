package checkout

import (
	"github.com/juancollazo-ch/vtex-order-placer/internal/models"
	"github.com/juancollazo-ch/vtex-order-placer/internal/payment"
)

// BuildOrderPayload arma el payload completo de la orden a partir de la
// simulación, el perfil del cliente y la logística ya resuelta. Solo
// construye el objeto, no hace I/O.
func BuildOrderPayload(
	simulation *models.SimulationResult,
	profile *models.CustomerProfile,
	logisticsInfo []models.SelectedLogistics,
	paymentSystemID int,
) *models.OrderPayload {

	items := make([]models.OrderItem, 0, len(simulation.Items))
	for _, item := range simulation.Items {
		items = append(items, models.OrderItem{
			ID:           item.ID,
			Quantity:     item.Quantity,
			Seller:       item.Seller,
			Price:        item.Price,
			SellingPrice: item.SellingPrice,
			RewardValue:  item.RewardValue,
			Offerings:    item.Offerings,
			PriceTags:    item.PriceTags,
			IsGift:       item.IsGift,
		})
	}

	value := payment.OrderValue(simulation.Items, logisticsInfo)

	return &models.OrderPayload{
		Items: items,
		ClientProfileData: models.ClientProfile{
			Email: profile.UserProfile.Email,
		},
		ShippingData: models.ShippingData{
			ID:            "shippingData",
			Address:       profile.AvailableAddresses[0],
			LogisticsInfo: logisticsInfo,
		},
		PaymentData: payment.BuildOrderPayments(paymentSystemID, value),
	}
}
