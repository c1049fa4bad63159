package discount

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/noah-isme/tiered-discount/internal/common"
	"github.com/noah-isme/tiered-discount/internal/obs"
)

// Handler exposes the evaluator over HTTP so carts can be previewed without the host runtime.
type Handler struct {
	Evaluator Evaluator
}

type validateTiersRequest struct {
	Value *string `json:"value" validate:"required"`
}

// Run evaluates a cart and responds with the exact document the function would emit.
func (h *Handler) Run(w http.ResponseWriter, r *http.Request) {
	report, err := h.evaluate(r)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, report.Result)
}

// Explain evaluates a cart and responds with the per-line outcome report.
func (h *Handler) Explain(w http.ResponseWriter, r *http.Request) {
	report, err := h.evaluate(r)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": report})
}

// ValidateTiers checks a metafield value and echoes the normalised tiers.
func (h *Handler) ValidateTiers(w http.ResponseWriter, r *http.Request) {
	tiers, err := validateTiers(r)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": map[string]any{"tiers": tiers}})
}

func validateTiers(r *http.Request) ([]Tier, error) {
	var req validateTiersRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, common.BadRequest("BAD_REQUEST", "invalid payload", err)
	}
	if err := validate.Struct(req); err != nil {
		return nil, common.BadRequest("VALIDATION_FAILED", "invalid payload", err).WithDetails(fieldDetails(err))
	}
	tiers, err := ParseTiers(*req.Value)
	if err != nil {
		appErr := common.Unprocessable("INVALID_TIER_CONFIG", err.Error(), err)
		var cfgErr *ConfigError
		if errors.As(err, &cfgErr) && cfgErr.Index >= 0 {
			appErr.WithDetails(map[string]any{"index": cfgErr.Index, "fields": cfgErr.Details})
		}
		return nil, appErr
	}
	return tiers, nil
}

func (h *Handler) evaluate(r *http.Request) (Report, error) {
	evaluator := h.Evaluator
	if reqID := middleware.GetReqID(r.Context()); reqID != "" {
		evaluator.Logger = evaluator.Logger.With().Str("request_id", reqID).Logger()
	}
	if raw := r.URL.Query().Get("policy"); raw != "" {
		policy, err := ParsePolicy(raw)
		if err != nil {
			return Report{}, common.BadRequest("INVALID_POLICY", err.Error(), err)
		}
		evaluator.Policy = policy
	}

	var input RunInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		return Report{}, common.BadRequest("BAD_REQUEST", "invalid payload", err)
	}
	if err := validate.Struct(input); err != nil {
		return Report{}, common.BadRequest("VALIDATION_FAILED", "invalid payload", err).WithDetails(fieldDetails(err))
	}

	return explainTraced(r.Context(), evaluator, input), nil
}

func explainTraced(ctx context.Context, evaluator Evaluator, input RunInput) Report {
	_, span := otel.Tracer("discount").Start(ctx, "discount.evaluate")
	defer span.End()

	report := evaluator.Explain(input)

	outcomes := make([]string, 0, len(report.Lines))
	for _, line := range report.Lines {
		outcomes = append(outcomes, string(line.Outcome))
	}
	applied := len(report.Result.Discounts) > 0
	obs.ObserveEvaluation(report.Policy.String(), applied, outcomes)

	span.SetAttributes(
		attribute.String("discount.policy", report.Policy.String()),
		attribute.Int("discount.cart_lines", len(report.Lines)),
		attribute.Int("discount.applied", len(report.Result.Discounts)),
	)
	return report
}
