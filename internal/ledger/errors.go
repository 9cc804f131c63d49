package ledger

import (
	"errors"
	"fmt"
)

var (
	// ErrPostingImbalance indicates debit and credit totals diverge
	// beyond the rounding tolerance for one document.
	ErrPostingImbalance = errors.New("posting imbalance")
	// ErrUnknownAccount indicates a posting references an account code
	// absent from the chart.
	ErrUnknownAccount = errors.New("unknown account")
	// ErrUnknownTaxCode indicates a line references a VAT code absent
	// from the tax table.
	ErrUnknownTaxCode = errors.New("unknown tax code")
	// ErrDanglingReference indicates a settlement references a document
	// number that does not exist.
	ErrDanglingReference = errors.New("dangling settlement reference")
	// ErrMissingDate indicates an unparseable or zero document date.
	ErrMissingDate = errors.New("missing document date")
	// ErrOverSettled indicates applied settlements exceed a document's
	// gross amount.
	ErrOverSettled = errors.New("document over-settled")
)

// Problem records one isolated fault tied to a document, line, or
// settlement reference. Faulted rows are excluded from derived output;
// everything else still computes.
type Problem struct {
	Ref string
	Err error
}

func (p Problem) Error() string {
	if p.Ref == "" {
		return p.Err.Error()
	}
	return fmt.Sprintf("%s: %v", p.Ref, p.Err)
}

func (p Problem) Unwrap() error {
	return p.Err
}

// Problems accumulates per-row faults for partial-success reporting.
type Problems []Problem

func (ps *Problems) add(ref string, err error) {
	*ps = append(*ps, Problem{Ref: ref, Err: err})
}

// Count returns how many problems matching target were recorded; a nil
// target counts everything.
func (ps Problems) Count(target error) int {
	if target == nil {
		return len(ps)
	}
	n := 0
	for _, p := range ps {
		if errors.Is(p.Err, target) {
			n++
		}
	}
	return n
}
