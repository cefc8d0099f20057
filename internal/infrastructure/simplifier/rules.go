package simplifier

import (
	"strings"

	"github.com/legalease/legalease/internal/core/domain"
)

// RuleBased is the deterministic local fallback for clause simplification.
// It scans the document for category keyword sets and emits one canned
// clause per matched category, in a fixed priority order. It always returns
// at least one clause.
type RuleBased struct{}

func NewRuleBased() *RuleBased {
	return &RuleBased{}
}

type rule struct {
	title      string
	simplified string
	category   domain.ClauseCategory
	importance domain.ClauseImportance
	keywords   []string
}

// Emission order is the category priority order: payment, financial,
// critical, general, security.
var rules = []rule{
	{
		title:      "Payment Terms",
		simplified: "You need to pay a specific amount every month on time. Late payments may result in additional fees.",
		category:   domain.CategoryPayment,
		importance: domain.ImportanceHigh,
		keywords:   []string{"payment", "pay", "amount", "fee", "cost", "price"},
	},
	{
		title:      "Interest Rate",
		simplified: "The loan charges interest at a fixed rate. This means you pay extra money on top of what you borrowed.",
		category:   domain.CategoryFinancial,
		importance: domain.ImportanceHigh,
		keywords:   []string{"interest", "rate", "annual", "apr", "percentage"},
	},
	{
		title:      "Default & Penalties",
		simplified: "If you miss payments or break the agreement, there will be serious consequences including penalties and possible legal action.",
		category:   domain.CategoryCritical,
		importance: domain.ImportanceCritical,
		keywords:   []string{"default", "breach", "violation", "penalty", "late"},
	},
	{
		title:      "Contract Duration",
		simplified: "This agreement lasts for a specific time period. The terms explain when it starts and ends.",
		category:   domain.CategoryGeneral,
		importance: domain.ImportanceMedium,
		keywords:   []string{"term", "period", "duration", "time", "month", "year"},
	},
	{
		title:      "Security & Collateral",
		simplified: "You have pledged something of value as security. If you fail to meet your obligations, the other party may claim it.",
		category:   domain.CategorySecurity,
		importance: domain.ImportanceHigh,
		keywords:   []string{"security", "collateral", "pledge", "guarantee", "lien"},
	},
}

const generalFallbackText = "This document contains important legal terms and conditions that you should understand before signing."

// SimplifyLocal is a pure function of the input text: same text, same
// clauses, same order. Ids are assigned sequentially from 1.
func (r *RuleBased) SimplifyLocal(text string) []domain.SimplifiedClause {
	lower := strings.ToLower(text)

	var clauses []domain.SimplifiedClause
	for _, rule := range rules {
		if !containsAny(lower, rule.keywords) {
			continue
		}
		clauses = append(clauses, domain.SimplifiedClause{
			ID:         len(clauses) + 1,
			Title:      rule.title,
			Simplified: rule.simplified,
			Category:   rule.category,
			Importance: rule.importance,
			Color:      rule.category.Color(),
		})
	}

	if len(clauses) == 0 {
		clauses = append(clauses, domain.SimplifiedClause{
			ID:         1,
			Title:      "General Terms",
			Simplified: generalFallbackText,
			Category:   domain.CategoryGeneral,
			Importance: domain.ImportanceMedium,
			Color:      domain.CategoryGeneral.Color(),
		})
	}

	return clauses
}

func containsAny(lower string, keywords []string) bool {
	for _, keyword := range keywords {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}
