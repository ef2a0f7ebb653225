package manager

import (
	"fmt"
	"net/http"
)

// tokenBudget counts streamed tokens against a generation limit. Runtimes
// that report tokens one at a time stop once Take returns false.
type tokenBudget struct {
	limit    int
	produced int
}

func newTokenBudget(maxTokens int) *tokenBudget {
	return &tokenBudget{limit: max(1, maxTokens)}
}

// Take records one produced token and reports whether another may follow.
func (b *tokenBudget) Take() bool {
	b.produced++
	return b.produced < b.limit
}

func (b *tokenBudget) Produced() int { return b.produced }

// FinishReason is "length" once the limit was reached.
func (b *tokenBudget) FinishReason() string {
	if b.produced >= b.limit {
		return "length"
	}
	return "stop"
}

// budgetExceededError reports a runtime that produced more tokens than it
// was allowed. The result is discarded.
type budgetExceededError struct{ limit, got int }

func (e budgetExceededError) Error() string {
	return fmt.Sprintf("runtime exceeded token budget: %d completion tokens, limit %d", e.got, e.limit)
}

// StatusCode maps the failure to 502: the runtime broke its contract.
func (e budgetExceededError) StatusCode() int { return http.StatusBadGateway }

// checkBudget rejects results whose completion count is over limit.
func checkBudget(res FinalResult, limit int) error {
	if res.Usage.CompletionTokens > limit {
		return budgetExceededError{limit: limit, got: res.Usage.CompletionTokens}
	}
	return nil
}
