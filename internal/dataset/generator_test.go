package dataset

import (
	"math/rand"
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/misa-sim/misa-sim/internal/ledger"
)

func testScenario(seed int64) Scenario {
	sc := DefaultScenario(seed)
	sc.End = time.Date(2024, time.June, 30, 0, 0, 0, 0, time.UTC)
	return sc
}

func generate(t *testing.T, seed int64) *Dataset {
	t.Helper()
	gen := NewGenerator(ledger.DefaultChart(), rand.New(rand.NewSource(seed)))
	ds, err := gen.Generate(testScenario(seed))
	require.NoError(t, err)
	return ds
}

func TestGenerateIsDeterministicPerSeed(t *testing.T) {
	a := generate(t, 7)
	b := generate(t, 7)

	require.Equal(t, len(a.Documents), len(b.Documents))
	for i := range a.Documents {
		docA, docB := a.Documents[i], b.Documents[i]
		require.Equal(t, docA.DocNo, docB.DocNo)
		require.Equal(t, docA.GrossAmount, docB.GrossAmount)
		require.True(t, reflect.DeepEqual(docA.Lines, docB.Lines))
	}
	require.True(t, reflect.DeepEqual(a.Settlements, b.Settlements))

	c := generate(t, 8)
	require.NotEqual(t, a.Documents[0].GrossAmount, c.Documents[0].GrossAmount,
		"different seeds should produce different amounts")
}

func TestGenerateDocumentInvariants(t *testing.T) {
	ds := generate(t, 7)
	require.Len(t, ds.Documents, 6*(5+7))

	seen := map[string]bool{}
	for _, doc := range ds.Documents {
		require.False(t, seen[doc.DocNo], "document numbers must be unique")
		seen[doc.DocNo] = true

		require.Equal(t, doc.GrossAmount, doc.NetAmount+doc.VATAmount)
		var net, vat int64
		for _, ln := range doc.Lines {
			require.Equal(t, ln.LineNet, ln.Quantity*ln.UnitPrice)
			require.GreaterOrEqual(t, ln.LineVAT, int64(0))
			net += ln.LineNet
			vat += ln.LineVAT
		}
		require.Equal(t, doc.NetAmount, net, "header net must equal line sum")
		require.Equal(t, doc.VATAmount, vat, "header vat must equal line sum")
	}
}

func TestGeneratedDatasetPostsClean(t *testing.T) {
	ds := generate(t, 7)
	poster := ledger.NewPoster(ds.Chart, ds.ItemCosts())
	journal, problems := ledger.Build(poster, ledger.BuildInput{
		Documents:     ds.Documents,
		Settlements:   ds.Settlements,
		Payrolls:      ds.Payrolls,
		Depreciations: ds.Depreciations,
	})
	require.Empty(t, problems, "generated data must post without faults")
	require.NotEmpty(t, journal.Entries)

	// Every document number in the journal must balance exactly.
	debits := map[string]int64{}
	credits := map[string]int64{}
	for _, e := range journal.Entries {
		if e.Side == ledger.Debit {
			debits[e.DocumentNo] += e.Amount
		} else {
			credits[e.DocumentNo] += e.Amount
		}
	}
	for docNo, d := range debits {
		diff := d - credits[docNo]
		if diff < 0 {
			diff = -diff
		}
		require.LessOrEqual(t, diff, int64(ledger.ImbalanceTolerance), "document %s", docNo)
	}
}

func TestSettlementsReferenceRealDocuments(t *testing.T) {
	ds := generate(t, 7)
	require.NotEmpty(t, ds.Settlements)

	byDoc := map[string]ledger.Document{}
	for _, doc := range ds.Documents {
		byDoc[doc.DocNo] = doc
	}
	for _, st := range ds.Settlements {
		doc, ok := byDoc[st.RefDocumentNo]
		require.True(t, ok, "settlement %s references unknown document", st.RefNo)
		require.LessOrEqual(t, st.Amount, doc.GrossAmount)
		require.Positive(t, st.Amount)
		require.False(t, st.RefDate.Before(doc.DocDate))
	}
}

func TestScenarioValidation(t *testing.T) {
	sc := DefaultScenario(7)
	sc.End = sc.Start.AddDate(0, 0, -1)
	require.Error(t, sc.Validate(), "end before start must fail")

	sc = DefaultScenario(7)
	sc.LinesPerDocument = 0
	require.Error(t, sc.Validate())

	sc = DefaultScenario(7)
	sc.SettleFraction = 1.5
	require.Error(t, sc.Validate())

	require.NoError(t, DefaultScenario(7).Validate())
}

func TestMonthEndsClampsFinalMonth(t *testing.T) {
	start := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC)
	ends := monthEnds(start, end)
	require.Len(t, ends, 3)
	require.Equal(t, time.Date(2024, time.January, 31, 0, 0, 0, 0, time.UTC), ends[0])
	require.Equal(t, end, ends[2])
}
