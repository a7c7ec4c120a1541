package extract

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/kaptinlin/jsonrepair"
)

// Strategy is one attempt at locating and decoding a value in free text.
// TryExtract must not retain text or mutate shared state.
type Strategy interface {
	Name() string
	TryExtract(text string) (any, bool)
}

const (
	StrategyGreedyPattern = "greedy_pattern"
	StrategyIndexScan     = "index_scan"
	StrategyMarkerSplit   = "marker_split"
	StrategyRepair        = "json_repair"
)

var (
	greedyArray  = regexp.MustCompile(`(?s)\[\s*\{.*\}\s*\]`)
	greedyObject = regexp.MustCompile(`(?s)\{.*\}`)
)

// decode strictly parses candidate and checks it against shape.
func decode(candidate string, shape Shape) (any, bool) {
	var v any
	if err := json.Unmarshal([]byte(candidate), &v); err != nil {
		return nil, false
	}
	if !shape.Conforms(v) {
		return nil, false
	}
	return v, true
}

// GreedyPattern matches from the first opening bracket to the last closing
// one with a greedy, nesting-unaware pattern and parses the leftmost match.
type GreedyPattern struct {
	Shape Shape
}

func (GreedyPattern) Name() string { return StrategyGreedyPattern }

func (g GreedyPattern) TryExtract(text string) (any, bool) {
	pattern := greedyObject
	if g.Shape == ArrayOfObjectsShape {
		pattern = greedyArray
	}
	match := pattern.FindString(text)
	if match == "" {
		return nil, false
	}
	return decode(match, g.Shape)
}

// IndexScan slices from the first opening bracket to the last closing bracket
// of the shape's kind and parses that span.
type IndexScan struct {
	Shape Shape
}

func (IndexScan) Name() string { return StrategyIndexScan }

func (s IndexScan) TryExtract(text string) (any, bool) {
	span, ok := bracketSpan(text, s.Shape)
	if !ok {
		return nil, false
	}
	return decode(span, s.Shape)
}

func bracketSpan(text string, shape Shape) (string, bool) {
	open, close := shape.delimiters()
	start := strings.IndexByte(text, open)
	end := strings.LastIndexByte(text, close)
	if start < 0 || end <= start {
		return "", false
	}
	return text[start : end+1], true
}

// MarkerSplit rebuilds an array from prose that labels each item with Marker,
// e.g. "Question 1: ...". Every fragment after the first occurrence of Marker
// contributes its first line; Build turns that line into one object.
// It only ever yields ArrayOfObjectsShape values.
type MarkerSplit struct {
	Marker string
	Build  func(text string) map[string]any
}

func (MarkerSplit) Name() string { return StrategyMarkerSplit }

func (m MarkerSplit) TryExtract(text string) (any, bool) {
	if m.Marker == "" || m.Build == nil {
		return nil, false
	}
	fragments := strings.Split(text, m.Marker)
	if len(fragments) < 2 {
		return nil, false
	}

	items := make([]any, 0, len(fragments)-1)
	for _, fragment := range fragments[1:] {
		line, _, _ := strings.Cut(fragment, "\n")
		line = strings.Trim(strings.TrimSuffix(line, "\r"), ": ")
		if line == "" {
			continue
		}
		item := m.Build(m.Marker + " " + line)
		if len(item) == 0 {
			continue
		}
		items = append(items, item)
	}
	if len(items) == 0 {
		return nil, false
	}
	return items, true
}

// Repair runs the bracket span through jsonrepair before parsing. It recovers
// comments, trailing commas, single quotes and truncated output, so it is only
// added to a chain on request.
type Repair struct {
	Shape Shape
}

func (Repair) Name() string { return StrategyRepair }

func (r Repair) TryExtract(text string) (any, bool) {
	open, _ := r.Shape.delimiters()
	start := strings.IndexByte(text, open)
	if start < 0 {
		return nil, false
	}
	candidate := text[start:]
	if span, ok := bracketSpan(text, r.Shape); ok {
		candidate = span
	}
	repaired, err := jsonrepair.JSONRepair(candidate)
	if err != nil {
		return nil, false
	}
	return decode(repaired, r.Shape)
}
