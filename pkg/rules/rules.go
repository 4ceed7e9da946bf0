// Package rules implements the recursive applicability rule model used to
// match authored content against a visitor's collected answers.
package rules

import (
	"encoding/json"
	"strconv"
)

// Operator compares an answer value against an authored rule value.
type Operator string

const (
	OpEquals      Operator = "equals"
	OpNotEquals   Operator = "not_equals"
	OpIncludes    Operator = "includes"
	OpGreaterThan Operator = "greater_than"
	OpLessThan    Operator = "less_than"
	OpBetween     Operator = "between"
)

// Logic combines the children of a rule group.
type Logic string

const (
	LogicAnd Logic = "AND"
	LogicOr  Logic = "OR"
)

// Answers is the flat field->answer map collected from the conversation
// flow. It is the only input the rule engine ever reads.
type Answers map[string]string

// Node is either a Condition leaf or a nested Group. The two concrete
// types are discriminated by a type switch at evaluation time.
type Node interface {
	isNode()
}

// Condition is a single field comparison. Weight scales the condition's
// contribution to the match score and defaults to 1.
type Condition struct {
	Field    string   `json:"field"`
	Operator Operator `json:"operator"`
	Value    Value    `json:"value"`
	Weight   float64  `json:"weight,omitempty"`
}

func (Condition) isNode() {}

// EffectiveWeight returns the condition weight, defaulting to 1 when the
// authored weight is absent or non-positive.
func (c Condition) EffectiveWeight() float64 {
	if c.Weight > 0 {
		return c.Weight
	}
	return 1
}

// Group is a boolean combination of conditions and nested groups. Groups
// nest arbitrarily; trees are built fresh per request from stored
// documents and are always finite.
type Group struct {
	Logic Logic  `json:"logic"`
	Rules []Node `json:"rules"`
}

func (Group) isNode() {}

// UnmarshalJSON decodes a group and its children, discriminating each
// child on the presence of a "logic" key.
func (g *Group) UnmarshalJSON(data []byte) error {
	var raw struct {
		Logic Logic             `json:"logic"`
		Rules []json.RawMessage `json:"rules"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	g.Logic = raw.Logic
	g.Rules = make([]Node, 0, len(raw.Rules))
	for _, child := range raw.Rules {
		node, err := decodeNode(child)
		if err != nil {
			return err
		}
		g.Rules = append(g.Rules, node)
	}
	return nil
}

func decodeNode(data json.RawMessage) (Node, error) {
	var probe struct {
		Logic *Logic `json:"logic"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, err
	}
	if probe.Logic != nil {
		var g Group
		if err := json.Unmarshal(data, &g); err != nil {
			return nil, err
		}
		return g, nil
	}
	var c Condition
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, err
	}
	return c, nil
}

// Value is an authored comparison value: a single string or a list of
// strings. Numbers in authored JSON are kept as their literal text so the
// numeric operators can parse them the same way they parse answers.
type Value struct {
	One  string
	Many []string
}

// StringValue returns a single-string value.
func StringValue(s string) Value { return Value{One: s} }

// ListValue returns a list value.
func ListValue(items ...string) Value { return Value{Many: items} }

// IsList reports whether the value is a list.
func (v Value) IsList() bool { return v.Many != nil }

func (v *Value) UnmarshalJSON(data []byte) error {
	var one string
	if err := json.Unmarshal(data, &one); err == nil {
		*v = Value{One: one}
		return nil
	}
	var num float64
	if err := json.Unmarshal(data, &num); err == nil {
		*v = Value{One: strconv.FormatFloat(num, 'f', -1, 64)}
		return nil
	}
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		// Unsupported shapes (objects, null) evaluate as an empty value,
		// which no operator matches. Malformed rules are never fatal.
		*v = Value{}
		return nil
	}
	many := make([]string, 0, len(raw))
	for _, item := range raw {
		var s string
		if err := json.Unmarshal(item, &s); err == nil {
			many = append(many, s)
			continue
		}
		var n float64
		if err := json.Unmarshal(item, &n); err == nil {
			many = append(many, strconv.FormatFloat(n, 'f', -1, 64))
		}
	}
	*v = Value{Many: many}
	return nil
}

func (v Value) MarshalJSON() ([]byte, error) {
	if v.IsList() {
		return json.Marshal(v.Many)
	}
	return json.Marshal(v.One)
}
