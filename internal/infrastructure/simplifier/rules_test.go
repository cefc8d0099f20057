package simplifier

import (
	"testing"

	"github.com/legalease/legalease/internal/core/domain"
)

func TestSimplifyLocalMatchesCategoriesInPriorityOrder(t *testing.T) {
	text := "The borrower shall make a monthly payment. Interest accrues at the annual rate. " +
		"Default triggers a penalty. The term of this agreement is twelve months. " +
		"Collateral secures the obligations."

	clauses := NewRuleBased().SimplifyLocal(text)
	if len(clauses) != 5 {
		t.Fatalf("expected all 5 categories matched, got %d: %+v", len(clauses), clauses)
	}

	wantCategories := []domain.ClauseCategory{
		domain.CategoryPayment,
		domain.CategoryFinancial,
		domain.CategoryCritical,
		domain.CategoryGeneral,
		domain.CategorySecurity,
	}
	for i, want := range wantCategories {
		if clauses[i].Category != want {
			t.Fatalf("clause %d: expected category %s, got %s", i, want, clauses[i].Category)
		}
		if clauses[i].ID != i+1 {
			t.Fatalf("clause %d: expected id %d, got %d", i, i+1, clauses[i].ID)
		}
		if clauses[i].Color != want.Color() {
			t.Fatalf("clause %d: expected canonical color %s, got %s", i, want.Color(), clauses[i].Color)
		}
	}
}

func TestSimplifyLocalIsCaseInsensitive(t *testing.T) {
	clauses := NewRuleBased().SimplifyLocal("PAYMENT DUE ON THE FIRST")
	if len(clauses) != 1 || clauses[0].Category != domain.CategoryPayment {
		t.Fatalf("expected payment clause, got %+v", clauses)
	}
}

func TestSimplifyLocalAlwaysReturnsAtLeastOneClause(t *testing.T) {
	clauses := NewRuleBased().SimplifyLocal("nothing legal here")
	if len(clauses) != 1 {
		t.Fatalf("expected single general fallback clause, got %d", len(clauses))
	}
	if clauses[0].Title != "General Terms" || clauses[0].Category != domain.CategoryGeneral {
		t.Fatalf("unexpected fallback clause: %+v", clauses[0])
	}
	if clauses[0].ID != 1 {
		t.Fatalf("expected id 1, got %d", clauses[0].ID)
	}
}

func TestSimplifyLocalIsDeterministic(t *testing.T) {
	text := "payment and interest"
	a := NewRuleBased().SimplifyLocal(text)
	b := NewRuleBased().SimplifyLocal(text)
	if len(a) != len(b) {
		t.Fatalf("expected identical output, got %d vs %d clauses", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("clause %d differs: %+v vs %+v", i, a[i], b[i])
		}
	}
}
