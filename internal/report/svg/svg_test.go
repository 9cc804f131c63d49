package svg

import (
	"strings"
	"testing"
)

func TestLinesProducesSVG(t *testing.T) {
	html, err := Lines(400, 200,
		[][]float64{{100, 200, 150}, {40, 60, 50}},
		[]string{"2024-01", "2024-02", "2024-03"},
		Opts{Title: "VAT theo tháng", Description: "Output vs input VAT", Legend: []string{"Đầu ra", "Đầu vào"}, ShowDots: true},
	)
	if err != nil {
		t.Fatalf("line renderer error: %v", err)
	}
	output := string(html)
	if !strings.HasPrefix(output, "<svg") {
		t.Fatalf("expected svg output, got %s", output)
	}
	if strings.Count(output, "<path") != 2 {
		t.Fatalf("expected one path per series")
	}
	if !strings.Contains(output, "aria-labelledby") {
		t.Fatalf("expected accessibility attributes")
	}
	if !strings.Contains(output, "Đầu ra") {
		t.Fatalf("expected legend labels")
	}
}

func TestLinesRejectsRaggedSeries(t *testing.T) {
	if _, err := Lines(400, 200, [][]float64{{1, 2}}, []string{"a"}, Opts{}); err == nil {
		t.Fatal("ragged series must be rejected")
	}
	if _, err := Lines(400, 200, nil, nil, Opts{}); err == nil {
		t.Fatal("empty series must be rejected")
	}
}

func TestBarsGroupsPerLabel(t *testing.T) {
	html, err := Bars(420, 220,
		[][]float64{{500, 600}, {300, 320}},
		[]string{"2024-01", "2024-02"},
		Opts{Title: "Bán vs Mua", Legend: []string{"Bán", "Mua"}},
	)
	if err != nil {
		t.Fatalf("bar renderer error: %v", err)
	}
	output := string(html)
	if strings.Count(output, "<rect") < 4 {
		t.Fatalf("expected one rect per value plus legend, got %s", output)
	}
}

func TestHBarsRanking(t *testing.T) {
	html, err := HBars(480, 240,
		[]float64{900, 700, 200},
		[]string{"CT TNHH Minh An", "CT CP Đông Á", "CT TNHH Hoa Sen"},
		Opts{Title: "Top khách hàng"},
	)
	if err != nil {
		t.Fatalf("hbar renderer error: %v", err)
	}
	output := string(html)
	if strings.Count(output, "<rect") != 3 {
		t.Fatalf("expected 3 bars, got %s", output)
	}
	if !strings.Contains(output, "Minh An") {
		t.Fatalf("expected row labels")
	}
}
