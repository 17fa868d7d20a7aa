package store

import (
	"context"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

func (r *eventRepo) AppendSessionEvent(ctx context.Context, data SessionEventData) error {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}

	query, args := builder.Insert("session_events").
		Columns("sequence", "timestamp_ms", "session_id", "action", "topic", "mode",
			"file_path", "slot_count", "attempts_total", "correct_first_try",
			"hints_requested", "duration_secs").
		Values(seqNum, time.Now().UnixMilli(), data.SessionID, data.Action, data.Topic, data.Mode,
			data.FilePath, data.SlotCount, data.AttemptsTotal, data.CorrectFirstTry,
			data.HintsRequested, data.DurationSecs).
		Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save session event: %w", err)
	}
	return nil
}

func (r *eventRepo) AppendAttemptEvent(ctx context.Context, data AttemptEventData) error {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}

	query, args := builder.Insert("attempt_events").
		Columns("sequence", "timestamp_ms", "session_id", "slot_id", "outcome", "flag",
			"hint_level", "feedback", "attempt_text").
		Values(seqNum, time.Now().UnixMilli(), data.SessionID, data.SlotID, data.Outcome, data.Flag,
			data.HintLevel, data.Feedback, data.AttemptText).
		Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save attempt event: %w", err)
	}
	return nil
}

func (r *eventRepo) AppendHintEvent(ctx context.Context, data HintEventData) error {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}

	query, args := builder.Insert("hint_events").
		Columns("sequence", "timestamp_ms", "session_id", "slot_id", "level", "hint_text").
		Values(seqNum, time.Now().UnixMilli(), data.SessionID, data.SlotID, data.Level, data.HintText).
		Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save hint event: %w", err)
	}
	return nil
}

func (r *eventRepo) QueryAttemptEvents(ctx context.Context, sessionID string) ([]AttemptEvent, error) {
	query, args := builder.Select("id", "sequence", "timestamp_ms", "session_id", "slot_id",
		"outcome", "flag", "hint_level", "feedback", "attempt_text").
		From(builder.Table("attempt_events")).
		Where(entsql.EQ("session_id", sessionID)).
		OrderBy("sequence").
		Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query attempt events: %w", err)
	}
	defer rows.Close()

	var out []AttemptEvent
	for rows.Next() {
		var e AttemptEvent
		var ts int64
		if err := rows.Scan(&e.ID, &e.Sequence, &ts, &e.SessionID, &e.SlotID,
			&e.Outcome, &e.Flag, &e.HintLevel, &e.Feedback, &e.AttemptText); err != nil {
			return nil, fmt.Errorf("scan attempt event: %w", err)
		}
		e.Timestamp = time.UnixMilli(ts)
		out = append(out, e)
	}
	return out, rows.Err()
}
