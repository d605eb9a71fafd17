package assessment

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/akmalmuhammed/hifzer-backend/internal/authadapter"
	"github.com/akmalmuhammed/hifzer-backend/internal/httpserver"
	"github.com/akmalmuhammed/hifzer-backend/pkg/user"
)

// Handler serves POST /api/v1/assessment/submit.
type Handler struct {
	logger *slog.Logger
	users  *user.Store
}

// NewHandler creates an assessment Handler.
func NewHandler(logger *slog.Logger, users *user.Store) *Handler {
	return &Handler{logger: logger, users: users}
}

// Routes returns a chi.Router with the assessment routes mounted.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/submit", h.handleSubmit)
	return r
}

// submitRequest is the self-reported assessment form.
type submitRequest struct {
	TimeBudgetMinutes int    `json:"time_budget_minutes" validate:"required,oneof=15 30 60 90"`
	FluencyScore      int    `json:"fluency_score" validate:"gte=0,lte=100"`
	TajwidConfidence  string `json:"tajwid_confidence" validate:"required,oneof=LOW MEDIUM HIGH"`
	Goal              string `json:"goal" validate:"required"`
	HasTeacher        bool   `json:"has_teacher"`
	PriorJuzBand      string `json:"prior_juz_band" validate:"required,oneof=ZERO SOME FIVE_PLUS"`
}

type submitResponse struct {
	ScaffoldingLevel            string  `json:"scaffolding_level"`
	Variant                     string  `json:"variant"`
	DailyNewTargetAyahs         int     `json:"daily_new_target_ayahs"`
	ReviewRatioTarget           int     `json:"review_ratio_target"`
	RetentionThreshold          float64 `json:"retention_threshold"`
	BacklogFreezeRatio          float64 `json:"backlog_freeze_ratio"`
	ConsolidationRetentionFloor float64 `json:"consolidation_retention_floor"`
	ManzilRotationDays          int     `json:"manzil_rotation_days"`
	AvgSecondsPerItem           int     `json:"avg_seconds_per_item"`
	OverdueCapSeconds           int64   `json:"overdue_cap_seconds"`
	RecommendedMinutes          int     `json:"recommended_minutes,omitempty"`
	Warning                     string  `json:"warning,omitempty"`
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if !httpserver.DecodeAndValidate(w, r, &req) {
		return
	}

	identity := authadapter.FromContext(r.Context())
	if identity == nil {
		httpserver.RespondError(w, http.StatusUnauthorized, "unauthorized", "missing identity")
		return
	}

	in := Inputs{
		TimeBudgetMinutes: req.TimeBudgetMinutes,
		FluencyScore:      req.FluencyScore,
		TajwidConfidence:  user.TajwidConfidence(req.TajwidConfidence),
		Goal:              req.Goal,
		HasTeacher:        req.HasTeacher,
		PriorJuzBand:      user.JuzBand(req.PriorJuzBand),
	}
	plan := Compute(in)

	if _, err := h.users.ApplyAssessment(r.Context(), identity.UserID, plan.ToUserUpdate(in)); err != nil {
		h.logger.Error("applying assessment", "error", err)
		httpserver.RespondError(w, http.StatusInternalServerError, "internal_error", "failed to persist assessment")
		return
	}

	httpserver.Respond(w, http.StatusOK, submitResponse{
		ScaffoldingLevel:            string(plan.ScaffoldingLevel),
		Variant:                     string(plan.Variant),
		DailyNewTargetAyahs:         plan.DailyNewTargetAyahs,
		ReviewRatioTarget:           plan.ReviewRatioTarget,
		RetentionThreshold:          plan.RetentionThreshold,
		BacklogFreezeRatio:          plan.BacklogFreezeRatio,
		ConsolidationRetentionFloor: plan.ConsolidationRetentionFloor,
		ManzilRotationDays:          plan.ManzilRotationDays,
		AvgSecondsPerItem:           plan.AvgSecondsPerItem,
		OverdueCapSeconds:           plan.OverdueCapSeconds,
		RecommendedMinutes:         plan.RecommendedMinutes,
		Warning:                    plan.Warning,
	})
}
