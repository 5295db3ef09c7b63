package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/Knetic/govaluate"
)

// allowedExpressionChars is the character whitelist enforced on the
// calculate tool's expression argument before it ever reaches govaluate.
const allowedExpressionChars = "0123456789+-*/.() "

func calculateTool() Definition {
	return Definition{
		Schema: Schema{
			Name:        "calculate",
			Description: "Evaluates an arithmetic expression.",
			Parameters: []Param{
				{Name: "expression", Type: "string", Required: true},
			},
		},
		Handler: handleCalculate,
	}
}

func handleCalculate(ctx context.Context, args map[string]interface{}) (map[string]interface{}, error) {
	expr, _ := args["expression"].(string)
	if expr == "" {
		return nil, fmt.Errorf("calculate: expression is required")
	}
	if bad := firstDisallowedChar(expr); bad != 0 {
		return nil, fmt.Errorf("calculate: expression contains disallowed character %q", bad)
	}

	evaluable, err := govaluate.NewEvaluableExpression(expr)
	if err != nil {
		return nil, fmt.Errorf("calculate: parsing expression: %w", err)
	}
	result, err := evaluable.Evaluate(nil)
	if err != nil {
		return nil, fmt.Errorf("calculate: evaluating expression: %w", err)
	}

	return map[string]interface{}{
		"expression": expr,
		"result":     result,
	}, nil
}

func firstDisallowedChar(expr string) rune {
	for _, r := range expr {
		if !strings.ContainsRune(allowedExpressionChars, r) {
			return r
		}
	}
	return 0
}
