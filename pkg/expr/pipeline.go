package expr

import (
	"time"

	reflectcat "github.com/atfkit/atf/pkg/reflect"

	"github.com/atfkit/atf/pkg/metrics"
)

// Evaluate runs the full Lexer -> Parser -> Builder pipeline over code
// against cat, recording per-stage duration and error-code metrics when m
// is non-nil.
func Evaluate(code string, cat *reflectcat.ExtendedCatalogue, baseAddressExpected uint64, m metrics.ExprMetrics) (Result, error) {
	tokens, err := timedStage(m, "lex", func() ([]Token, error) { return Lex(code) })
	if err != nil {
		return Result{}, err
	}

	ops, err := timedStage(m, "parse", func() ([]Opcode, error) { return Parse(tokens) })
	if err != nil {
		return Result{}, err
	}

	result, err := timedStage(m, "build", func() (Result, error) { return Build(ops, cat, baseAddressExpected) })
	if err != nil {
		return Result{}, err
	}
	return result, nil
}

func timedStage[T any](m metrics.ExprMetrics, stage string, fn func() (T, error)) (T, error) {
	start := time.Now()
	v, err := fn()
	if m != nil {
		code := ""
		if err != nil {
			code = "error"
		}
		m.RecordStage(stage, time.Since(start), code)
	}
	return v, err
}
