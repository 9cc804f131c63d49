package ledger

import (
	"fmt"
	"sort"
)

// Journal is the full set of posted entries for one derivation run.
type Journal struct {
	Entries []JournalEntry
}

// BuildInput carries everything a derivation run consumes. Reference
// data is shared read-only; nothing here is mutated.
type BuildInput struct {
	Documents     []Document
	Settlements   []Settlement
	Payrolls      []PayrollRun
	Depreciations []DepreciationRun
}

// Build posts every transaction and accumulates the journal. Faults on a
// single document or settlement are recorded and that row is skipped;
// the rest of the journal still materialises.
func Build(poster *Poster, in BuildInput) (Journal, Problems) {
	var journal Journal
	var problems Problems

	kinds := make(map[string]DocumentKind, len(in.Documents))
	for _, doc := range in.Documents {
		kinds[doc.DocNo] = doc.Kind
		entries, err := poster.PostDocument(doc)
		if err != nil {
			problems.add(doc.DocNo, err)
			continue
		}
		journal.Entries = append(journal.Entries, entries...)
	}

	for _, st := range in.Settlements {
		kind, ok := kinds[st.RefDocumentNo]
		if !ok {
			problems.add(st.RefNo, fmt.Errorf("document %s: %w", st.RefDocumentNo, ErrDanglingReference))
			continue
		}
		entries, err := poster.PostSettlement(st, kind)
		if err != nil {
			problems.add(st.RefNo, err)
			continue
		}
		journal.Entries = append(journal.Entries, entries...)
	}

	for _, run := range in.Payrolls {
		entries, err := poster.PostPayroll(run)
		if err != nil {
			problems.add(run.RefNo, err)
			continue
		}
		journal.Entries = append(journal.Entries, entries...)
	}

	for _, run := range in.Depreciations {
		entries, err := poster.PostDepreciation(run)
		if err != nil {
			problems.add(run.RefNo, err)
			continue
		}
		journal.Entries = append(journal.Entries, entries...)
	}

	return journal, problems
}

// TrialBalanceRow is one (month, account) summary split by side.
type TrialBalanceRow struct {
	Month       Month
	AccountCode string
	Debit       int64
	Credit      int64
}

// tbKey is the strongly typed grouping key for trial balance rows.
type tbKey struct {
	month   Month
	account string
}

// TrialBalance recomputes the per-month, per-account totals from the
// journal. The result is sparse: months without entries for an account
// do not appear. Entries with a zero date are counted into problems and
// excluded.
func TrialBalance(journal Journal) ([]TrialBalanceRow, Problems) {
	var problems Problems
	totals := make(map[tbKey]*TrialBalanceRow)
	for _, e := range journal.Entries {
		if e.EntryDate.IsZero() {
			problems.add(e.DocumentNo, ErrMissingDate)
			continue
		}
		key := tbKey{month: MonthOf(e.EntryDate), account: e.AccountCode}
		row, ok := totals[key]
		if !ok {
			row = &TrialBalanceRow{Month: key.month, AccountCode: key.account}
			totals[key] = row
		}
		switch e.Side {
		case Debit:
			row.Debit += e.Amount
		case Credit:
			row.Credit += e.Amount
		}
	}
	rows := make([]TrialBalanceRow, 0, len(totals))
	for _, row := range totals {
		rows = append(rows, *row)
	}
	sortTrialBalance(rows)
	return rows, problems
}

// DenseTrialBalance zero-fills every account that appears anywhere in
// the journal across the inclusive month range.
func DenseTrialBalance(journal Journal, first, last Month) ([]TrialBalanceRow, Problems) {
	sparse, problems := TrialBalance(journal)
	accounts := make(map[string]bool)
	present := make(map[tbKey]TrialBalanceRow, len(sparse))
	for _, row := range sparse {
		accounts[row.AccountCode] = true
		present[tbKey{month: row.Month, account: row.AccountCode}] = row
	}
	var rows []TrialBalanceRow
	for _, m := range MonthsBetween(first, last) {
		for code := range accounts {
			if row, ok := present[tbKey{month: m, account: code}]; ok {
				rows = append(rows, row)
				continue
			}
			rows = append(rows, TrialBalanceRow{Month: m, AccountCode: code})
		}
	}
	sortTrialBalance(rows)
	return rows, problems
}

// MergeTrialBalances combines partition results by key summation. The
// aggregation is associative and commutative, so partitions may be
// computed in any order.
func MergeTrialBalances(parts ...[]TrialBalanceRow) []TrialBalanceRow {
	totals := make(map[tbKey]*TrialBalanceRow)
	for _, part := range parts {
		for _, row := range part {
			key := tbKey{month: row.Month, account: row.AccountCode}
			agg, ok := totals[key]
			if !ok {
				agg = &TrialBalanceRow{Month: row.Month, AccountCode: row.AccountCode}
				totals[key] = agg
			}
			agg.Debit += row.Debit
			agg.Credit += row.Credit
		}
	}
	rows := make([]TrialBalanceRow, 0, len(totals))
	for _, row := range totals {
		rows = append(rows, *row)
	}
	sortTrialBalance(rows)
	return rows
}

func sortTrialBalance(rows []TrialBalanceRow) {
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Month != rows[j].Month {
			return rows[i].Month.Before(rows[j].Month)
		}
		return rows[i].AccountCode < rows[j].AccountCode
	})
}
