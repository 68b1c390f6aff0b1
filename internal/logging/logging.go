// internal/logging/logging.go
package logging

import (
	"context"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// contextKey es un tipo privado para evitar colisiones de claves de contexto.
type contextKey string

const RunIDKey contextKey = "run_id"
const OrderSeqKey contextKey = "order_seq"

// NewLogger construye el logger de producción con niveles legibles como
// severidad y timestamps ISO8601.
func NewLogger() (*zap.Logger, error) {
	config := zap.NewProductionConfig()

	config.EncoderConfig.MessageKey = "message"
	config.EncoderConfig.LevelKey = "severity"
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return config.Build()
}

// WithRunID guarda el id de la corrida en el contexto.
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, RunIDKey, runID)
}

// WithOrderSeq guarda el id del pipeline de una orden en el contexto.
func WithOrderSeq(ctx context.Context, orderSeq string) context.Context {
	return context.WithValue(ctx, OrderSeqKey, orderSeq)
}

// FieldsFromContext extrae los campos de logging (run_id, order_seq) del
// contexto y los devuelve como un slice de zap.Field.
func FieldsFromContext(ctx context.Context) []zap.Field {
	fields := []zap.Field{}
	if runID, ok := ctx.Value(RunIDKey).(string); ok && runID != "" {
		fields = append(fields, zap.String("run_id", runID))
	}
	if seq, ok := ctx.Value(OrderSeqKey).(string); ok && seq != "" {
		fields = append(fields, zap.String("order_seq", seq))
	}
	return fields
}
