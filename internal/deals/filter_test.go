package deals

import (
	"context"
	"iter"
	"slices"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/law-makers/dealwatch/pkg/models"
)

func candidates(cs ...models.DealCandidate) iter.Seq[models.DealCandidate] {
	return slices.Values(cs)
}

func card(title, priceText, link string) models.DealCandidate {
	return models.DealCandidate{Title: title, PriceText: priceText, Link: link, DepartureDate: "1 feb", Duration: "9 dagen"}
}

func TestApply_Threshold(t *testing.T) {
	f := NewFilter(decimal.NewFromInt(1200), 2, nil)

	got := slices.Collect(f.Apply(context.Background(), candidates(
		card("A", "€ 999,00", "https://x.test/a"),
		card("B", "€ 1.500,00", "https://x.test/b"),
		card("C", "€ 1.099,50", "https://x.test/c"),
		card("D", "€ 1.200,00", "https://x.test/d"),
	)))

	if len(got) != 2 {
		t.Fatalf("expected 2 deals, got %d: %+v", len(got), got)
	}
	if got[0].Name != "A" || got[1].Name != "C" {
		t.Errorf("unexpected deals: %s, %s", got[0].Name, got[1].Name)
	}
	for _, d := range got {
		if !d.PricePerPerson.LessThan(decimal.NewFromInt(1200)) {
			t.Errorf("deal %s at %s is not below threshold", d.Name, d.PricePerPerson)
		}
		if !d.TotalPrice.Equal(d.PricePerPerson.Mul(decimal.NewFromInt(2))) {
			t.Errorf("deal %s total %s is not twice %s", d.Name, d.TotalPrice, d.PricePerPerson)
		}
	}

	stats := f.Stats()
	if stats.Candidates != 4 || stats.AboveThreshold != 2 || stats.Emitted != 2 {
		t.Errorf("unexpected stats: %+v", stats)
	}
}

func TestApply_Dedup(t *testing.T) {
	seen := NewSeenDeals()
	f := NewFilter(decimal.NewFromInt(1200), 2, seen)

	sponsored := card("Sunset", "€ 999,00", "https://x.test/sunset")
	got := slices.Collect(f.Apply(context.Background(), candidates(
		sponsored,
		card("Lagoon", "€ 899,00", "https://x.test/lagoon"),
		sponsored,
		card("Sunset", "€ 949,00", "https://x.test/sunset"),
	)))

	if len(got) != 3 {
		t.Fatalf("expected 3 deals, got %d: %+v", len(got), got)
	}
	if f.Stats().Duplicates != 1 {
		t.Errorf("expected 1 duplicate, got %d", f.Stats().Duplicates)
	}
	if seen.Len() != 3 {
		t.Errorf("seen set size = %d, want 3", seen.Len())
	}
}

func TestApply_FreshSeenSetRenotifies(t *testing.T) {
	in := candidates(card("Sunset", "€ 999,00", "https://x.test/sunset"))

	first := slices.Collect(NewFilter(decimal.NewFromInt(1200), 2, nil).Apply(context.Background(), in))
	second := slices.Collect(NewFilter(decimal.NewFromInt(1200), 2, nil).Apply(context.Background(), in))

	if len(first) != 1 || len(second) != 1 {
		t.Errorf("each run should emit the deal once, got %d and %d", len(first), len(second))
	}
}

func TestApply_MalformedSkipped(t *testing.T) {
	f := NewFilter(decimal.NewFromInt(1200), 2, nil)

	got := slices.Collect(f.Apply(context.Background(), candidates(
		card("Broken", "op aanvraag", "https://x.test/broken"),
		card("Empty", "", "https://x.test/empty"),
		card("Ok", "€ 500,-", "https://x.test/ok"),
	)))

	if len(got) != 1 || got[0].Name != "Ok" {
		t.Fatalf("expected only the well-formed deal, got %+v", got)
	}
	if !got[0].PricePerPerson.Equal(decimal.NewFromInt(500)) {
		t.Errorf("price = %s, want 500", got[0].PricePerPerson)
	}
	if f.Stats().Malformed != 2 {
		t.Errorf("malformed = %d, want 2", f.Stats().Malformed)
	}
}

func TestApply_Sentinels(t *testing.T) {
	f := NewFilter(decimal.NewFromInt(1200), 2, nil)

	got := slices.Collect(f.Apply(context.Background(), candidates(
		models.DealCandidate{Title: "Bare", PriceText: "€ 700,00"},
	)))

	if len(got) != 1 {
		t.Fatalf("expected one deal, got %d", len(got))
	}
	d := got[0]
	if d.DepartureDate != models.Unknown || d.Duration != models.Unknown || d.URL != models.Unknown {
		t.Errorf("expected sentinels, got %+v", d)
	}
}

func TestApply_PartySize(t *testing.T) {
	f := NewFilter(decimal.NewFromInt(1200), 0, nil)
	got := slices.Collect(f.Apply(context.Background(), candidates(card("A", "€ 1.099,50", "https://x.test/a"))))
	if !got[0].TotalPrice.Equal(decimal.RequireFromString("2199")) {
		t.Errorf("total = %s, want 2199 for the default party of 2", got[0].TotalPrice)
	}

	f = NewFilter(decimal.NewFromInt(1200), 3, nil)
	got = slices.Collect(f.Apply(context.Background(), candidates(card("A", "€ 100,00", "https://x.test/a"))))
	if !got[0].TotalPrice.Equal(decimal.NewFromInt(300)) {
		t.Errorf("total = %s, want 300", got[0].TotalPrice)
	}
}

func TestApply_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	f := NewFilter(decimal.NewFromInt(1200), 2, nil)
	got := slices.Collect(f.Apply(ctx, candidates(card("A", "€ 100,00", "https://x.test/a"))))
	if len(got) != 0 {
		t.Errorf("expected nothing after cancellation, got %+v", got)
	}
}
