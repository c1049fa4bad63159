package discount

import (
	"strings"

	"github.com/rs/zerolog"
)

// Outcome classifies what happened to a single cart line.
type Outcome string

const (
	OutcomeApplied           Outcome = "applied"
	OutcomeNotProductVariant Outcome = "not_product_variant"
	OutcomeMissingProduct    Outcome = "missing_product"
	OutcomeMissingMetafield  Outcome = "missing_metafield"
	OutcomeMissingTag        Outcome = "missing_tag"
	OutcomeInvalidConfig     Outcome = "invalid_config"
	OutcomeNoMatchingTier    Outcome = "no_matching_tier"
)

// LineOutcome records how one cart line was evaluated.
type LineOutcome struct {
	LineID   string  `json:"lineId"`
	Quantity int     `json:"quantity"`
	Outcome  Outcome `json:"outcome"`
	Tier     *Tier   `json:"tier,omitempty"`
	Error    string  `json:"error,omitempty"`
}

// Report is the result of Explain: the function result plus a per-line trace.
type Report struct {
	Policy Policy            `json:"policy"`
	Result FunctionRunResult `json:"result"`
	Lines  []LineOutcome     `json:"lines"`
}

// Evaluator computes tier discounts for a cart. It holds no state between calls and
// is safe for concurrent use.
type Evaluator struct {
	Policy Policy
	// Logger receives diagnostics for rejected tier configs. The zero value discards them.
	Logger zerolog.Logger
}

// Run evaluates every cart line and returns the discounts to apply. It never fails:
// lines with unusable configuration are skipped and logged.
func (e Evaluator) Run(input RunInput) FunctionRunResult {
	return e.Explain(input).Result
}

// Explain behaves like Run and also reports the outcome for each line in cart order.
func (e Evaluator) Explain(input RunInput) Report {
	policy := e.policy()
	lines := input.Cart.Lines
	report := Report{Policy: policy, Lines: make([]LineOutcome, 0, len(lines))}

	discounts := make([]Discount, 0, len(lines))
	for _, line := range lines {
		outcome, tier := e.evaluateLine(policy, line)
		report.Lines = append(report.Lines, outcome)
		if tier == nil {
			continue
		}
		discounts = append(discounts, Discount{
			Targets: []Target{{CartLine: &CartLineTarget{ID: line.ID}}},
			Value:   Value{Percentage: &Percentage{Value: tier.Percentage()}},
			Message: tier.Message,
		})
	}

	if len(discounts) == 0 {
		report.Result = EmptyResult()
		return report
	}
	report.Result = FunctionRunResult{
		DiscountApplicationStrategy: StrategyFirst,
		Discounts:                   discounts,
	}
	return report
}

func (e Evaluator) policy() Policy {
	if e.Policy == "" {
		return DefaultPolicy
	}
	return e.Policy
}

func (e Evaluator) evaluateLine(policy Policy, line CartLine) (LineOutcome, *Tier) {
	out := LineOutcome{LineID: line.ID, Quantity: line.Quantity}

	if line.Merchandise.Typename != MerchandiseProductVariant {
		out.Outcome = OutcomeNotProductVariant
		return out, nil
	}
	product := line.Merchandise.Product
	if product == nil {
		out.Outcome = OutcomeMissingProduct
		return out, nil
	}
	if product.Metafield == nil || strings.TrimSpace(product.Metafield.Value) == "" {
		out.Outcome = OutcomeMissingMetafield
		return out, nil
	}
	if !product.HasAnyTag {
		out.Outcome = OutcomeMissingTag
		return out, nil
	}

	tiers, err := ParseTiers(product.Metafield.Value)
	if err != nil {
		e.Logger.Warn().
			Err(err).
			Str("line_id", line.ID).
			Msg("skip line with unparseable tier config")
		out.Outcome = OutcomeInvalidConfig
		out.Error = err.Error()
		return out, nil
	}

	tier, ok := policy.Select(tiers, line.Quantity)
	if !ok {
		out.Outcome = OutcomeNoMatchingTier
		return out, nil
	}
	out.Outcome = OutcomeApplied
	out.Tier = &tier
	return out, &tier
}
