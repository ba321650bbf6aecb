package trace

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// zapObserver writes events as structured log entries.
type zapObserver struct {
	log *zap.Logger
}

// NewZap returns an Observer logging through log. Probe and bisection
// events go to Debug, convergence and materialization to Info, skips,
// retries and failures to Warn. A nil log yields a no-op logger.
func NewZap(log *zap.Logger) Observer {
	if log == nil {
		log = zap.NewNop()
	}

	return &zapObserver{log: log}
}

func (z *zapObserver) Observe(e Event) {
	level := levelOf(e.Kind)
	ce := z.log.Check(level, "eigen: "+e.Kind.String())
	if ce == nil {
		return
	}

	fields := make([]zap.Field, 0, 8)
	if e.Run != "" {
		fields = append(fields, zap.String("run", e.Run))
	}
	if e.Slot > 0 {
		fields = append(fields, zap.Int("slot", e.Slot))
	}
	fields = append(fields, zap.Float64("lambda", e.Lambda))

	switch e.Kind {
	case ProbeEvaluated:
		fields = append(fields, zap.Float64("residual", e.Residual))
	case BisectionStep:
		fields = append(fields,
			zap.Int("iteration", e.Iteration),
			zap.Float64("residual", e.Residual),
			zap.Float64("lo", e.Lo),
			zap.Float64("hi", e.Hi),
		)
	case BracketFound:
		fields = append(fields, zap.Float64("lo", e.Lo), zap.Float64("hi", e.Hi))
	case Converged:
		fields = append(fields, zap.Int("iterations", e.Iteration), zap.Float64("width", e.Hi-e.Lo))
	case Retry, BracketExhausted:
		fields = append(fields, zap.Int("attempt", e.Iteration), zap.Float64("step", e.Step))
	case Materialized:
		fields = append(fields, zap.Float64("scale", e.Scale))
	}
	if e.Err != nil {
		fields = append(fields, zap.Error(e.Err))
	}
	ce.Write(fields...)
}

func levelOf(k Kind) zapcore.Level {
	switch k {
	case ProbeEvaluated, BisectionStep, BracketFound:
		return zapcore.DebugLevel
	case Converged, Materialized:
		return zapcore.InfoLevel
	default:
		return zapcore.WarnLevel
	}
}
