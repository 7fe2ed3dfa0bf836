package dice

import "go.uber.org/zap"

// Roller evaluates dice expressions with debug logging of each roll.
type Roller struct {
	src Source
	log *zap.Logger
}

// NewRoller builds a Roller over src. A nil logger disables logging.
func NewRoller(src Source, log *zap.Logger) *Roller {
	if log == nil {
		log = zap.NewNop()
	}
	return &Roller{src: src, log: log}
}

// Roll parses and evaluates expr.
func (r *Roller) Roll(expr string) (int, error) {
	parsed, err := Parse(expr)
	if err != nil {
		return 0, err
	}
	total := parsed.Roll(r.src)
	r.log.Debug("dice roll",
		zap.String("expression", parsed.String()),
		zap.Int("total", total),
	)
	return total, nil
}

// RollExpr evaluates an already-parsed expression.
func (r *Roller) RollExpr(e Expr) int {
	total := e.Roll(r.src)
	r.log.Debug("dice roll",
		zap.String("expression", e.String()),
		zap.Int("total", total),
	)
	return total
}
