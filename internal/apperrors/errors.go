package apperrors

import (
	"fmt"
	"strings"
)

// FieldViolation describe una violación de validación sobre un campo de
// las opciones.
type FieldViolation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v FieldViolation) String() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

// ConfigurationError agrupa todas las violaciones de las opciones, no solo
// la primera.
type ConfigurationError struct {
	Violations []FieldViolation
}

func (e *ConfigurationError) Error() string {
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		parts = append(parts, v.String())
	}
	return fmt.Sprintf("invalid options: %s", strings.Join(parts, "; "))
}

// PreconditionError aborta la corrida antes de colocar órdenes: catálogo
// vacío, perfil inexistente o perfil sin direcciones.
type PreconditionError struct {
	Reason string
}

func (e *PreconditionError) Error() string {
	return e.Reason
}

// UnrepairableError indica que el motor de simulación agotó sus intentos
// sin llegar a una simulación válida.
type UnrepairableError struct {
	Attempts int
	Messages []string
}

func (e *UnrepairableError) Error() string {
	msg := fmt.Sprintf("simulation still invalid after %d attempts: not enough catalog depth or undeliverable postal code", e.Attempts)
	if len(e.Messages) > 0 {
		msg = fmt.Sprintf("%s (%s)", msg, strings.Join(e.Messages, "; "))
	}
	return msg
}

// PaymentSystemUnavailableError indica que el sistema de pago configurado
// no está entre los ofrecidos por la simulación.
type PaymentSystemUnavailableError struct {
	PaymentSystemID int
	Available       []string
}

func (e *PaymentSystemUnavailableError) Error() string {
	if len(e.Available) == 0 {
		return fmt.Sprintf("payment system %d not available", e.PaymentSystemID)
	}
	return fmt.Sprintf("payment system %d not available (offered: %s)", e.PaymentSystemID, strings.Join(e.Available, ", "))
}

// PipelineError envuelve la falla de un pipeline individual de colocación.
// En modo tolerante se loguea y el pipeline no aporta orden, sin abortar
// el batch.
type PipelineError struct {
	OrderSeq string
	Stage    string
	Err      error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("order pipeline %s failed at %s: %v", e.OrderSeq, e.Stage, e.Err)
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}
