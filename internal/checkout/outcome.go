package checkout

// Outcome describes how a checkout attempt ended. OrphanedHeader is the
// accepted degradation where the items insert failed and the
// compensating header delete failed too.
type Outcome string

const (
	OutcomeCommitted      Outcome = "committed"
	OutcomeRolledBack     Outcome = "rolled_back"
	OutcomeOrphanedHeader Outcome = "orphaned_header"
)

// String implements fmt.Stringer.
func (o Outcome) String() string {
	return string(o)
}

// Result is returned from Checkout. OrderID is only meaningful when the
// outcome is Committed.
type Result struct {
	OrderID int64
	Outcome Outcome
}
