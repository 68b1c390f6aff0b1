package logistics

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/juancollazo-ch/vtex-order-placer/internal/models"
)

// FirstOptionPrompter es el adapter determinístico: siempre elige la
// primera SLA y su primera ventana. Es el modo por defecto para load
// testing, donde no hay nadie a quien preguntarle.
type FirstOptionPrompter struct{}

func (FirstOptionPrompter) ChooseSLA(itemIndex int, slas []models.SLA) (models.SLA, error) {
	return slas[0], nil
}

func (FirstOptionPrompter) ChooseWindow(itemIndex int, sla models.SLA) (*models.DeliveryWindow, error) {
	if len(sla.AvailableDeliveryWindows) == 0 {
		return nil, nil
	}
	window := sla.AvailableDeliveryWindows[0]
	return &window, nil
}

func (FirstOptionPrompter) ConfirmSameForAll() (bool, error) {
	return true, nil
}

// TerminalPrompter pregunta por terminal qué SLA y ventana usar para cada
// item.
type TerminalPrompter struct {
	in  *bufio.Scanner
	out io.Writer
}

func NewTerminalPrompter(in io.Reader, out io.Writer) *TerminalPrompter {
	return &TerminalPrompter{
		in:  bufio.NewScanner(in),
		out: out,
	}
}

func (p *TerminalPrompter) ChooseSLA(itemIndex int, slas []models.SLA) (models.SLA, error) {
	fmt.Fprintf(p.out, "Choose a SLA to use for item %d:\n", itemIndex)
	for i, sla := range slas {
		fmt.Fprintf(p.out, "  %d) %s\n", i+1, sla.Name)
	}

	selection, err := p.readSelection(len(slas))
	if err != nil {
		return models.SLA{}, err
	}
	return slas[selection], nil
}

func (p *TerminalPrompter) ChooseWindow(itemIndex int, sla models.SLA) (*models.DeliveryWindow, error) {
	windows := sla.AvailableDeliveryWindows
	if len(windows) == 0 {
		return nil, nil
	}

	fmt.Fprintf(p.out, "Choose a delivery window for item %d:\n", itemIndex)
	for i, window := range windows {
		fmt.Fprintf(p.out, "  %d) %s\n", i+1, formatWindow(window))
	}

	selection, err := p.readSelection(len(windows))
	if err != nil {
		return nil, err
	}

	window := windows[selection]
	return &window, nil
}

func (p *TerminalPrompter) ConfirmSameForAll() (bool, error) {
	fmt.Fprint(p.out, "Do you want to use the same SLA for every item? [Y/n] ")

	if !p.in.Scan() {
		if err := p.in.Err(); err != nil {
			return false, err
		}
		return false, io.EOF
	}

	answer := strings.ToLower(strings.TrimSpace(p.in.Text()))
	return answer == "" || answer == "y" || answer == "yes", nil
}

// readSelection lee un número de opción entre 1 y count, reintentando
// hasta recibir uno válido.
func (p *TerminalPrompter) readSelection(count int) (int, error) {
	for {
		fmt.Fprint(p.out, "> ")

		if !p.in.Scan() {
			if err := p.in.Err(); err != nil {
				return 0, err
			}
			return 0, io.EOF
		}

		selection, err := strconv.Atoi(strings.TrimSpace(p.in.Text()))
		if err == nil && selection >= 1 && selection <= count {
			return selection - 1, nil
		}

		fmt.Fprintf(p.out, "Enter a number between 1 and %d\n", count)
	}
}

// formatWindow arma la descripción legible de una ventana, por ejemplo
// "Monday 02/01 from 09:00 to 12:00". Si las fechas no parsean se muestran
// crudas.
func formatWindow(window models.DeliveryWindow) string {
	start, startErr := time.Parse(time.RFC3339, window.StartDateUTC)
	end, endErr := time.Parse(time.RFC3339, window.EndDateUTC)
	if startErr != nil || endErr != nil {
		return fmt.Sprintf("%s to %s", window.StartDateUTC, window.EndDateUTC)
	}

	return fmt.Sprintf("%s from %s to %s",
		start.Format("Monday 02/01"),
		start.Format("15:04"),
		end.Format("15:04"),
	)
}
