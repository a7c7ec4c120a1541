package extract

import "strings"

// Extractor runs an ordered strategy chain for one Shape. It holds no mutable
// state after construction and is safe for concurrent use.
type Extractor struct {
	shape      Shape
	strategies []Strategy
}

type options struct {
	heuristic Strategy
	repair    bool
	custom    []Strategy
}

// Option configures an Extractor.
type Option func(*options)

// WithHeuristic appends a reconstruction strategy that runs once both bracket
// scans have failed.
func WithHeuristic(s Strategy) Option {
	return func(o *options) { o.heuristic = s }
}

// WithRepair appends a jsonrepair pass as the last strategy before the default.
func WithRepair(enabled bool) Option {
	return func(o *options) { o.repair = enabled }
}

// WithStrategies replaces the whole chain.
func WithStrategies(strategies ...Strategy) Option {
	return func(o *options) { o.custom = strategies }
}

// New builds an Extractor. The default chain is GreedyPattern then IndexScan,
// followed by the optional heuristic and repair passes.
func New(shape Shape, opts ...Option) *Extractor {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	if o.custom != nil {
		return &Extractor{shape: shape, strategies: append([]Strategy(nil), o.custom...)}
	}

	chain := []Strategy{GreedyPattern{Shape: shape}, IndexScan{Shape: shape}}
	if o.heuristic != nil {
		chain = append(chain, o.heuristic)
	}
	if o.repair {
		chain = append(chain, Repair{Shape: shape})
	}
	return &Extractor{shape: shape, strategies: chain}
}

// Shape returns the shape this extractor produces.
func (e *Extractor) Shape() Shape {
	return e.shape
}

// Strategies lists the chain in evaluation order.
func (e *Extractor) Strategies() []string {
	names := make([]string, len(e.strategies))
	for i, s := range e.strategies {
		names[i] = s.Name()
	}
	return names
}

// Extract returns the first value a strategy recovers from raw, or def.
// def is returned untouched and must already have the extractor's shape.
func (e *Extractor) Extract(raw string, def any) Result {
	if strings.TrimSpace(raw) != "" {
		for _, s := range e.strategies {
			if v, ok := attempt(s, raw); ok {
				return Result{Value: v, Outcome: Parsed, Strategy: s.Name()}
			}
		}
	}
	return Result{Value: def, Outcome: Fallback, Strategy: StrategyDefault}
}

// attempt treats a panicking strategy as a failed one.
func attempt(s Strategy, raw string) (v any, ok bool) {
	defer func() {
		if recover() != nil {
			v, ok = nil, false
		}
	}()
	return s.TryExtract(raw)
}

var (
	defaultObject = New(ObjectShape)
	defaultArray  = New(ArrayOfObjectsShape)
)

// Extract runs the default chain for shape.
func Extract(raw string, shape Shape, def any) Result {
	if shape == ArrayOfObjectsShape {
		return defaultArray.Extract(raw, def)
	}
	return defaultObject.Extract(raw, def)
}
