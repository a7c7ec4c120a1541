package extract

import "encoding/json"

// Outcome tells whether a Result came from the model text or from the default.
type Outcome int

const (
	Fallback Outcome = iota
	Parsed
)

func (o Outcome) String() string {
	if o == Parsed {
		return "parsed"
	}
	return "fallback"
}

// StrategyDefault names the terminal step that returns the caller's default.
const StrategyDefault = "default"

// Result is the value handed back by Extract. Value is either the decoded
// model output or the caller's default; Strategy names the step that produced it.
type Result struct {
	Value    any
	Outcome  Outcome
	Strategy string
}

// IsParsed reports whether Value was recovered from the raw text.
func (r Result) IsParsed() bool {
	return r.Outcome == Parsed
}

// MarshalJSON writes only Value so parsed and fallback results have the same
// wire shape.
func (r Result) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Value)
}
