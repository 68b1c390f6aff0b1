package logistics

import (
	"fmt"

	"github.com/juancollazo-ch/vtex-order-placer/internal/models"
)

// Prompter resuelve las elecciones de envío de un item. Hay dos
// implementaciones: la interactiva por terminal y la determinística que
// siempre toma la primera opción.
type Prompter interface {
	// ChooseSLA elige una SLA entre las ofrecidas para el item. El caller
	// garantiza que slas no está vacío.
	ChooseSLA(itemIndex int, slas []models.SLA) (models.SLA, error)
	// ChooseWindow elige una ventana de entrega de la SLA, o nil si la SLA
	// no ofrece ventanas.
	ChooseWindow(itemIndex int, sla models.SLA) (*models.DeliveryWindow, error)
	// ConfirmSameForAll pregunta si la elección del item 0 debe intentarse
	// para todos los items siguientes.
	ConfirmSameForAll() (bool, error)
}

// choice es la elección completa de un item.
type choice struct {
	sla    models.SLA
	window *models.DeliveryWindow
}

// Selector resuelve exactamente una SLA (y opcionalmente una ventana) por
// item. El estado de "usar la misma elección" vive en una sola pasada de
// SelectAll, nunca entre órdenes simuladas por separado.
type Selector struct {
	prompter Prompter
}

func NewSelector(prompter Prompter) *Selector {
	return &Selector{prompter: prompter}
}

// SelectAll recorre las ofertas en orden y devuelve la logística elegida
// por item. La decisión de reuso se toma una única vez, procesando el item
// 0; si el calce falla para un item posterior se cae a una elección
// independiente sin volver a preguntar.
func (s *Selector) SelectAll(offers []models.LogisticsOffer) ([]models.SelectedLogistics, error) {
	selected := make([]models.SelectedLogistics, 0, len(offers))

	var reuseDecision bool
	var firstChoice choice

	for _, offer := range offers {
		if len(offer.SLAs) == 0 {
			return nil, fmt.Errorf("item %d carries no shipping options", offer.ItemIndex)
		}

		var itemChoice choice
		matched := false

		if offer.ItemIndex > 0 && reuseDecision {
			itemChoice, matched = matchChoice(offer, firstChoice)
		}

		if !matched {
			var err error
			itemChoice, err = s.promptChoice(offer)
			if err != nil {
				return nil, err
			}
		}

		if offer.ItemIndex == 0 {
			firstChoice = itemChoice

			sameForAll, err := s.prompter.ConfirmSameForAll()
			if err != nil {
				return nil, err
			}
			reuseDecision = sameForAll
		}

		selected = append(selected, models.SelectedLogistics{
			ItemIndex:      offer.ItemIndex,
			SelectedSLA:    itemChoice.sla.ID,
			Price:          itemChoice.sla.Price,
			DeliveryWindow: itemChoice.window,
		})
	}

	return selected, nil
}

func (s *Selector) promptChoice(offer models.LogisticsOffer) (choice, error) {
	sla, err := s.prompter.ChooseSLA(offer.ItemIndex, offer.SLAs)
	if err != nil {
		return choice{}, err
	}

	window, err := s.prompter.ChooseWindow(offer.ItemIndex, sla)
	if err != nil {
		return choice{}, err
	}

	return choice{sla: sla, window: window}, nil
}

// matchChoice intenta repetir la elección del item 0 dentro de la oferta
// del item actual: misma SLA por id y, si el item 0 eligió ventana, una
// ventana igual por valor. Ambos deben tener ventana o ninguno.
func matchChoice(offer models.LogisticsOffer, first choice) (choice, bool) {
	for _, sla := range offer.SLAs {
		if sla.ID != first.sla.ID {
			continue
		}

		if first.window == nil {
			return choice{sla: sla}, true
		}

		for _, window := range sla.AvailableDeliveryWindows {
			if window.Equal(*first.window) {
				matchedWindow := window
				return choice{sla: sla, window: &matchedWindow}, true
			}
		}

		return choice{}, false
	}

	return choice{}, false
}
