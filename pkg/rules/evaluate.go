package rules

import (
	"strconv"
	"strings"
)

// Evaluate reports whether a rule node holds for the given answers. It is
// total: missing fields, unknown operators and malformed values evaluate
// to false rather than failing, so a bad authored rule never aborts a
// personalization request.
func Evaluate(n Node, answers Answers) bool {
	switch r := n.(type) {
	case Condition:
		return evaluateCondition(r, answers)
	case Group:
		return evaluateGroup(r, answers)
	default:
		return false
	}
}

// Applicable reports whether any of the alternative top-level groups is
// satisfied. An empty group set means the content is unconditional.
// Authors rely on an empty-rules AND group imposing no constraint.
func Applicable(groups []Group, answers Answers) bool {
	if len(groups) == 0 {
		return true
	}
	for _, g := range groups {
		if evaluateGroup(g, answers) {
			return true
		}
	}
	return false
}

func evaluateGroup(g Group, answers Answers) bool {
	if g.Logic == LogicOr {
		for _, child := range g.Rules {
			if Evaluate(child, answers) {
				return true
			}
		}
		// Nothing to satisfy: an empty OR group never holds.
		return false
	}
	// AND, vacuously true when empty.
	for _, child := range g.Rules {
		if !Evaluate(child, answers) {
			return false
		}
	}
	return true
}

func evaluateCondition(c Condition, answers Answers) bool {
	v := answers[c.Field]
	switch c.Operator {
	case OpEquals:
		return equalsMatch(v, c.Value)
	case OpNotEquals:
		return !equalsMatch(v, c.Value)
	case OpIncludes:
		return includesMatch(v, c.Value)
	case OpGreaterThan:
		av, aok := parseNumber(v)
		bv, bok := parseNumber(c.Value.One)
		return aok && bok && av > bv
	case OpLessThan:
		av, aok := parseNumber(v)
		bv, bok := parseNumber(c.Value.One)
		return aok && bok && av < bv
	case OpBetween:
		return betweenMatch(v, c.Value)
	default:
		// Unrecognized operators are always-false leaves.
		return false
	}
}

func equalsMatch(v string, val Value) bool {
	if val.IsList() {
		// One-of semantics, shared with the includes list case so the two
		// operators agree when authors use them interchangeably.
		return anyFoldContains(v, val.Many)
	}
	return v == val.One
}

func includesMatch(v string, val Value) bool {
	if val.IsList() {
		return anyFoldContains(v, val.Many)
	}
	return strings.Contains(strings.ToLower(v), strings.ToLower(val.One))
}

// anyFoldContains tolerates free-text answers that carry extra words: the
// answer matches if it contains any listed entry, case-insensitively.
func anyFoldContains(v string, entries []string) bool {
	lower := strings.ToLower(v)
	for _, entry := range entries {
		if entry == "" {
			continue
		}
		if strings.Contains(lower, strings.ToLower(entry)) {
			return true
		}
	}
	return false
}

func betweenMatch(v string, val Value) bool {
	if len(val.Many) != 2 {
		return false
	}
	n, ok := parseNumber(v)
	if !ok {
		return false
	}
	lo, okLo := parseNumber(val.Many[0])
	hi, okHi := parseNumber(val.Many[1])
	if !okLo || !okHi {
		return false
	}
	return n >= lo && n <= hi
}

func parseNumber(s string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return f, err == nil
}
