package runner

import (
	"context"
	"log/slog"

	"github.com/abhisek/sherpa/internal/review"
	"github.com/abhisek/sherpa/internal/skeleton"
	"github.com/abhisek/sherpa/internal/store"
	"github.com/abhisek/sherpa/internal/tutor"
)

// recorder writes session history to the event store. Persistence is
// best effort: failures are logged and never interrupt the session.
type recorder struct {
	repo      store.EventRepo
	sessionID string
	logger    *slog.Logger
}

func (r *recorder) session(ctx context.Context, action string, info StartInfo, m tutor.Metrics, durationSecs int) {
	if r.repo == nil {
		return
	}
	err := r.repo.AppendSessionEvent(ctx, store.SessionEventData{
		SessionID:       r.sessionID,
		Action:          action,
		Topic:           info.Topic,
		Mode:            info.Mode,
		FilePath:        info.Path,
		SlotCount:       len(info.Slots),
		AttemptsTotal:   m.AttemptsTotal,
		CorrectFirstTry: m.CorrectOnFirstTry,
		HintsRequested:  m.HintsRequested,
		DurationSecs:    durationSecs,
	})
	if err != nil {
		r.logger.Warn("record session event failed", "action", action, "error", err)
	}
}

func (r *recorder) attempt(ctx context.Context, a skeleton.Attempt, v review.Verdict) {
	if r.repo == nil {
		return
	}
	err := r.repo.AppendAttemptEvent(ctx, store.AttemptEventData{
		SessionID:   r.sessionID,
		SlotID:      a.SlotID,
		Outcome:     string(v.Outcome),
		Flag:        string(v.Flag),
		HintLevel:   v.HintLevelUsed,
		Feedback:    v.Feedback,
		AttemptText: a.Text,
	})
	if err != nil {
		r.logger.Warn("record attempt event failed", "slot", a.SlotID, "error", err)
	}
}

func (r *recorder) hint(ctx context.Context, h tutor.HintResult) {
	if r.repo == nil {
		return
	}
	err := r.repo.AppendHintEvent(ctx, store.HintEventData{
		SessionID: r.sessionID,
		SlotID:    h.SlotID,
		Level:     h.Level,
		HintText:  h.Text,
	})
	if err != nil {
		r.logger.Warn("record hint event failed", "slot", h.SlotID, "error", err)
	}
}
