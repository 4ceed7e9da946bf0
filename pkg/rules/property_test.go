package rules

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

var genOperator = gen.OneConstOf(
	OpEquals, OpNotEquals, OpIncludes, OpGreaterThan, OpLessThan, OpBetween,
	Operator("bogus"), Operator(""),
)

func genAnswers() gopter.Gen {
	return gen.MapOf(gen.AlphaString(), gen.AnyString()).
		Map(func(m map[string]string) Answers { return m })
}

// Evaluation is total: arbitrary trees against arbitrary answers never
// panic, whatever the operators and value shapes.
func TestEvaluatePropertyNeverPanics(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("evaluate never panics", prop.ForAll(
		func(field string, op Operator, value string, listValue []string, useList bool, answers Answers, depth int) bool {
			cond := Condition{Field: field, Operator: op, Value: StringValue(value)}
			if useList {
				cond.Value = ListValue(listValue...)
			}

			node := Node(cond)
			for i := 0; i < depth; i++ {
				logic := LogicAnd
				if i%2 == 0 {
					logic = LogicOr
				}
				node = Group{Logic: logic, Rules: []Node{node, cond}}
			}

			defer func() {
				if r := recover(); r != nil {
					t.Errorf("Evaluate panicked: %v", r)
				}
			}()

			_ = Evaluate(node, answers)
			_ = ScoreGroups([]Group{{Logic: LogicAnd, Rules: []Node{node}}}, answers)
			return true
		},
		gen.AnyString(),
		genOperator,
		gen.AnyString(),
		gen.SliceOf(gen.AnyString()),
		gen.Bool(),
		genAnswers(),
		gen.IntRange(0, 6),
	))

	properties.TestingRun(t)
}

// equals and includes share one-of semantics when the authored value is a
// list; both operators must always agree on list values.
func TestEqualsIncludesListEquivalence(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("list-valued equals agrees with list-valued includes", prop.ForAll(
		func(answer string, entries []string) bool {
			answers := Answers{"f": answer}
			eq := Evaluate(Condition{Field: "f", Operator: OpEquals, Value: ListValue(entries...)}, answers)
			inc := Evaluate(Condition{Field: "f", Operator: OpIncludes, Value: ListValue(entries...)}, answers)
			return eq == inc
		},
		gen.AnyString(),
		gen.SliceOf(gen.AlphaString()),
	))

	properties.TestingRun(t)
}

// Adding a satisfied weighted leaf to a matched AND group never lowers
// the group's score.
func TestScoreMonotonicityProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("satisfied leaves only add score", prop.ForAll(
		func(weight float64) bool {
			answers := Answers{"flow": "buy", "extra": "yes"}
			base := Group{Logic: LogicAnd, Rules: []Node{
				Condition{Field: "flow", Operator: OpEquals, Value: StringValue("buy")},
			}}
			extended := Group{Logic: LogicAnd, Rules: append(base.Rules,
				Condition{Field: "extra", Operator: OpEquals, Value: StringValue("yes"), Weight: weight},
			)}

			before := ScoreGroups([]Group{base}, answers).Score
			after := ScoreGroups([]Group{extended}, answers).Score
			return after >= before
		},
		gen.Float64Range(0, 100),
	))

	properties.TestingRun(t)
}
