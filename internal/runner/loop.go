package runner

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/abhisek/sherpa/internal/adaptive"
	"github.com/abhisek/sherpa/internal/review"
	"github.com/abhisek/sherpa/internal/store"
	"github.com/abhisek/sherpa/internal/tutor"
	"github.com/abhisek/sherpa/internal/watcher"
)

// errQuit stops the loop without an error.
var errQuit = errors.New("quit")

// Run consumes watcher events and learner commands until the exercise is
// finished, the learner quits, ctx is cancelled or the watcher reports a
// terminal event. Events are handled strictly in arrival order and one at
// a time. A review already in progress when ctx is cancelled runs to
// completion and is applied; nothing after it is consumed.
//
// Run returns nil on completion, quit or cancellation, and ErrFileLost or
// ErrWatchFailed on terminal watcher events. The summary is reported in
// every case.
func (r *Runner) Run(ctx context.Context, events <-chan watcher.Event, commands <-chan string) error {
	if r.done {
		return errors.New("runner: session already ended")
	}
	err := r.loop(ctx, events, commands)
	r.finish(ctx, err)
	if errors.Is(err, errQuit) {
		return nil
	}
	return err
}

func (r *Runner) loop(ctx context.Context, events <-chan watcher.Event, commands <-chan string) error {
	for {
		if ctx.Err() != nil {
			return nil
		}

		// Saves that already settled are handled before typed commands.
		select {
		case ev, ok := <-events:
			if err := r.consume(ctx, ev, ok); err != nil {
				return err
			}
			if r.machine.Finished() {
				return nil
			}
			continue
		default:
		}

		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-events:
			if err := r.consume(ctx, ev, ok); err != nil {
				return err
			}

		case line, ok := <-commands:
			if !ok {
				// Input closed; keep watching the file.
				commands = nil
				continue
			}
			if err := r.handleCommand(ctx, line); err != nil {
				return err
			}
		}
		if r.machine.Finished() {
			return nil
		}
	}
}

func (r *Runner) consume(ctx context.Context, ev watcher.Event, ok bool) error {
	if !ok {
		// The watcher closes its stream when ctx ends.
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("%w: event stream closed", ErrWatchFailed)
	}
	return r.handleEvent(ctx, ev)
}

func (r *Runner) handleEvent(ctx context.Context, ev watcher.Event) error {
	switch ev.Kind {
	case watcher.EventLost:
		r.logger.Warn("exercise file lost", "path", ev.Path, "error", ev.Err)
		return fmt.Errorf("%w: %s", ErrFileLost, ev.Path)
	case watcher.EventFailed:
		r.logger.Error("watch failed", "path", ev.Path, "error", ev.Err)
		return fmt.Errorf("%w: %v", ErrWatchFailed, ev.Err)
	}

	res := r.detector.Detect(ev.Old, ev.New)
	r.text = ev.New
	if len(res.Issues) > 0 {
		r.logger.Warn("marker issues", "count", len(res.Issues))
		r.reporter.Issues(res.Issues)
	}
	if res.Attempt == nil {
		return nil
	}

	a := *res.Attempt
	if err := r.machine.BeginAttempt(a); err != nil {
		// The text is settled without a review so it is not offered again.
		r.detector.Record(a.SlotID, a.Text)
		if errors.Is(err, tutor.ErrSlotComplete) {
			r.reporter.Notice(fmt.Sprintf("TODO %d is already complete; further edits are not reviewed.", a.SlotID))
			return nil
		}
		r.logger.Warn("attempt rejected", "slot", a.SlotID, "error", err)
		return nil
	}
	r.lastSlot = a.SlotID
	r.logger.Debug("attempt detected", "slot", a.SlotID, "changed", a.Changed, "deferred", res.Deferred)
	if len(res.Deferred) > 0 {
		r.reporter.Notice(fmt.Sprintf("Reviewing TODO %d now; %s will be reviewed on your next save.", a.SlotID, todoList(res.Deferred)))
	}
	r.reporter.Reviewing(a)

	slot, _ := r.skel.Slot(a.SlotID)
	state, _ := r.machine.Slot(a.SlotID)

	// The review is not interrupted by cancellation; its result is applied.
	rctx := context.WithoutCancel(ctx)
	v := r.opts.Handler.ReviewAttempt(rctx, review.Input{
		Topic:     r.opts.Topic,
		Language:  r.opts.Language.Name,
		Slot:      *slot,
		Attempt:   a,
		HintLevel: state.HintLevel,
		Paper:     r.opts.Paper,
		FileText:  r.text,
	})

	tr, err := r.machine.ApplyVerdict(v)
	if err != nil {
		r.machine.AbortAttempt()
		return fmt.Errorf("apply verdict: %w", err)
	}
	after, _ := r.machine.Slot(a.SlotID)
	r.logger.Info("attempt reviewed", "slot", a.SlotID, "outcome", v.Outcome, "flag", v.Flag, "to", tr.To)

	if !tr.RolledBack {
		r.rec.attempt(rctx, a, v)
	}
	// A rolled back or timed out review leaves the text unsettled, so
	// saving again retries it.
	if !tr.RolledBack && v.Flag != review.FlagTimeout {
		r.detector.Record(a.SlotID, a.Text)
	}
	r.reporter.Feedback(after, v, tr)
	if tr.RolledBack {
		return nil
	}

	m := r.machine.Metrics()
	if tr.To == tutor.StatusComplete {
		r.reporter.Progress(r.machine.Progress())
		if s := r.advisor.Observe(m); s != nil {
			r.logger.Info("mode suggestion", "from", s.From, "to", s.To, "reason", s.Reason)
			r.reporter.Suggest(*s)
		}
		return nil
	}

	if adaptive.ShouldOfferHint(m) && after.HintLevel < tutor.MaxHintLevel && !r.nudged[a.SlotID] {
		r.nudged[a.SlotID] = true
		r.reporter.Nudge(a.SlotID)
	}
	return nil
}

func (r *Runner) handleCommand(ctx context.Context, line string) error {
	cmd, err := ParseCommand(line)
	if err != nil {
		r.reporter.Notice(err.Error())
		return nil
	}

	switch cmd.Kind {
	case CmdHint:
		id := cmd.Slot
		if id == 0 {
			id = r.hintTarget()
		}
		h, err := r.machine.RequestHint(id)
		switch {
		case errors.Is(err, tutor.ErrAttemptInFlight):
			r.reporter.Notice(fmt.Sprintf("TODO %d is being reviewed; ask again in a moment.", id))
			return nil
		case err != nil:
			r.reporter.Notice(fmt.Sprintf("No hint available: %v.", err))
			return nil
		}
		if h.Advanced {
			r.rec.hint(ctx, h)
		}
		r.reporter.Hint(h)

	case CmdStatus:
		r.reporter.Status(r.machine.Slots(), r.machine.Metrics())

	case CmdQuit:
		return errQuit

	case CmdHelp:
		r.reporter.Notice(Usage)
	}
	return nil
}

func todoList(ids []int) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}
	if len(parts) == 1 {
		return "TODO " + parts[0]
	}
	return "TODOs " + strings.Join(parts, ", ")
}

// hintTarget picks the slot a bare "hint" refers to: the last attempted
// slot while it is still open, else the first open slot.
func (r *Runner) hintTarget() int {
	if s, ok := r.machine.Slot(r.lastSlot); ok && s.Status != tutor.StatusComplete {
		return r.lastSlot
	}
	return r.machine.CurrentSlot()
}

// finish records the end of the session and reports the summary. It runs
// once, after the loop has stopped consuming events.
func (r *Runner) finish(ctx context.Context, cause error) {
	if r.done {
		return
	}
	r.done = true

	action := store.SessionEnded
	if r.machine.Finished() {
		action = store.SessionFinished
	}
	m := r.machine.Metrics()
	sum := r.machine.Summary(r.info.Mode)

	fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), summaryTimeout)
	defer cancel()

	r.rec.session(fctx, action, r.info, m, int(sum.Duration.Seconds()))
	r.logger.Info("session ended", "action", action, "attempts", m.AttemptsTotal,
		"first_try", m.CorrectOnFirstTry, "hints", m.HintsRequested, "cause", cause)
	r.reporter.Summary(r.opts.Handler.Summarize(fctx, sum))
}
