package ledger

import (
	"fmt"
	"sort"
	"time"
)

// Bucket labels elapsed-day intervals for aging reports. Intervals are
// half-open on the lower bound: (-1,30], (30,60], (60,90], (90,180],
// (180,365], (365,∞).
type Bucket string

const (
	Bucket0to30    Bucket = "0-30"
	Bucket31to60   Bucket = "31-60"
	Bucket61to90   Bucket = "61-90"
	Bucket91to180  Bucket = "91-180"
	Bucket181to365 Bucket = "181-365"
	BucketOver365  Bucket = ">365"
)

// Buckets lists all aging buckets in ascending order.
func Buckets() []Bucket {
	return []Bucket{Bucket0to30, Bucket31to60, Bucket61to90, Bucket91to180, Bucket181to365, BucketOver365}
}

// BucketFor assigns elapsed days to a bucket. Negative values
// (future-dated documents) fall into the first bucket.
func BucketFor(days int) Bucket {
	switch {
	case days <= 30:
		return Bucket0to30
	case days <= 60:
		return Bucket31to60
	case days <= 90:
		return Bucket61to90
	case days <= 180:
		return Bucket91to180
	case days <= 365:
		return Bucket181to365
	default:
		return BucketOver365
	}
}

// AgingRow is one (partner, bucket) outstanding total.
type AgingRow struct {
	PartnerCode string
	Bucket      Bucket
	Outstanding int64
}

// AgingOptions tune the aging computation. AsOf is mandatory so runs are
// reproducible; there is no implicit clock read.
type AgingOptions struct {
	AsOf        time.Time
	Kind        DocumentKind
	IncludeZero bool
}

// agingKey groups outstanding amounts.
type agingKey struct {
	partner string
	bucket  Bucket
}

// Aging computes outstanding balances per open document as of an
// explicit reference date and groups them by partner and bucket.
// Settlements match documents by exact number equality only. Settlements
// referencing unknown documents and documents settled beyond gross are
// reported as problems; fully settled documents contribute nothing
// unless IncludeZero is set.
func Aging(docs []Document, settlements []Settlement, opts AgingOptions) ([]AgingRow, Problems) {
	var problems Problems
	if opts.AsOf.IsZero() {
		problems.add("", fmt.Errorf("aging: %w", ErrMissingDate))
		return nil, problems
	}

	byDoc := make(map[string]bool, len(docs))
	for _, doc := range docs {
		byDoc[doc.DocNo] = true
	}
	applied := make(map[string]int64, len(settlements))
	for _, st := range settlements {
		if !byDoc[st.RefDocumentNo] {
			problems.add(st.RefNo, fmt.Errorf("document %s: %w", st.RefDocumentNo, ErrDanglingReference))
			continue
		}
		applied[st.RefDocumentNo] += st.Amount
	}

	totals := make(map[agingKey]int64)
	for _, doc := range docs {
		if opts.Kind != "" && doc.Kind != opts.Kind {
			continue
		}
		if doc.DocDate.IsZero() {
			problems.add(doc.DocNo, ErrMissingDate)
			continue
		}
		outstanding := doc.GrossAmount - applied[doc.DocNo]
		if outstanding < 0 {
			problems.add(doc.DocNo, fmt.Errorf("applied %d exceeds gross %d: %w",
				applied[doc.DocNo], doc.GrossAmount, ErrOverSettled))
			outstanding = 0
		}
		if outstanding == 0 && !opts.IncludeZero {
			continue
		}
		days := int(opts.AsOf.Sub(doc.DocDate).Hours() / 24)
		key := agingKey{partner: doc.PartnerCode, bucket: BucketFor(days)}
		if _, ok := totals[key]; !ok {
			totals[key] = 0
		}
		totals[key] += outstanding
	}

	rows := make([]AgingRow, 0, len(totals))
	for key, amount := range totals {
		rows = append(rows, AgingRow{PartnerCode: key.partner, Bucket: key.bucket, Outstanding: amount})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].PartnerCode != rows[j].PartnerCode {
			return rows[i].PartnerCode < rows[j].PartnerCode
		}
		return bucketOrder(rows[i].Bucket) < bucketOrder(rows[j].Bucket)
	})
	return rows, problems
}

// BucketTotals collapses aging rows to per-bucket sums in bucket order,
// zero-filling empty buckets. Chart rendering depends on the fixed
// six-slot shape.
func BucketTotals(rows []AgingRow) []AgingRow {
	totals := make(map[Bucket]int64, 6)
	for _, row := range rows {
		totals[row.Bucket] += row.Outstanding
	}
	out := make([]AgingRow, 0, 6)
	for _, b := range Buckets() {
		out = append(out, AgingRow{Bucket: b, Outstanding: totals[b]})
	}
	return out
}

func bucketOrder(b Bucket) int {
	for i, known := range Buckets() {
		if known == b {
			return i
		}
	}
	return len(Buckets())
}
