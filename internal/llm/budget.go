package llm

// Budget caps extraction calls for one run. It is created fresh per run and
// passed explicitly into the extractor rather than living as ambient state.
// Every attempted call increments Used exactly once, failed calls included;
// once exhausted, further calls are short-circuited without contacting the
// service.
type Budget struct {
	Used int
	Max  int
}

func NewBudget(max int) *Budget {
	return &Budget{Max: max}
}

// Exhausted reports whether no calls remain. It never increments.
func (b *Budget) Exhausted() bool {
	return b.Used >= b.Max
}

// Spend consumes one call.
func (b *Budget) Spend() {
	b.Used++
}
