package reporter

import (
	"mipbuild/pkg/builder"

	"go.uber.org/zap"
)

// Zap forwards build notifications to a structured logger. Per-file events
// are logged at debug level, everything else at info.
type Zap struct {
	logger *zap.Logger
}

// NewZap returns a reporter logging through logger.
func NewZap(logger *zap.Logger) *Zap {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Zap{logger: logger.Named("report")}
}

// Report implements builder.Reporter.
func (z *Zap) Report(e builder.Event) {
	fields := []zap.Field{
		zap.String("event", string(e.Type)),
		zap.String("phase", string(e.Phase)),
	}
	if e.Path != "" {
		fields = append(fields, zap.String("path", e.Path))
	}
	if e.Elapsed > 0 {
		fields = append(fields, zap.Duration("elapsed", e.Elapsed))
	}

	switch e.Type {
	case builder.EventFileProcessed, builder.EventFileOutput:
		z.logger.Debug(e.Message, fields...)
	default:
		z.logger.Info(e.Message, fields...)
	}
}

// Multi fans a notification out to several reporters in order.
type Multi []builder.Reporter

// Report implements builder.Reporter.
func (m Multi) Report(e builder.Event) {
	for _, r := range m {
		if r != nil {
			r.Report(e)
		}
	}
}
