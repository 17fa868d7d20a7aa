package modes

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/sherpa/internal/llm"
	"github.com/abhisek/sherpa/internal/paper"
	"github.com/abhisek/sherpa/internal/review"
	"github.com/abhisek/sherpa/internal/skeleton"
	"github.com/abhisek/sherpa/internal/tutor"
)

func exerciseJSON(n int) json.RawMessage {
	var slots []map[string]any
	for i := 1; i <= n; i++ {
		slots = append(slots, map[string]any{
			"goal":     fmt.Sprintf("compute term %d", i),
			"concept":  "log-ratio",
			"prelude":  fmt.Sprintf("def term%d(x):", i),
			"indent":   "    ",
			"starter":  "",
			"solution": "return x",
			"hints":    []string{"a", "b", "c"},
		})
	}
	b, _ := json.Marshal(map[string]any{"title": "DPO", "slots": slots})
	return b
}

func newHandler(t *testing.T, mode Mode, mock *llm.MockProvider) Handler {
	t.Helper()
	gen := skeleton.NewGenerator(mock, skeleton.DefaultConfig(), nil)
	eval := review.NewEvaluator(mock, review.DefaultConfig(), nil)
	h, err := New(mode, gen, eval, mock)
	require.NoError(t, err)
	return h
}

func lastUserMessage(mock *llm.MockProvider) string {
	call := mock.Calls[len(mock.Calls)-1]
	return call.Messages[len(call.Messages)-1].Content
}

func TestParseMode(t *testing.T) {
	for in, want := range map[string]Mode{
		"":          Tutorial,
		"tutorial":  Tutorial,
		" Guided ":  Guided,
		"CHALLENGE": Challenge,
		"debug":     Debug,
	} {
		got, err := ParseMode(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseMode("socratic")
	assert.True(t, errors.Is(err, ErrUnknownMode))
}

func TestNew_UnknownMode(t *testing.T) {
	_, err := New("socratic", nil, nil, nil)
	assert.ErrorIs(t, err, ErrUnknownMode)
}

func TestRenderOptions(t *testing.T) {
	want := map[Mode]int{Tutorial: 1, Guided: 3, Challenge: 0, Debug: 1}
	for _, m := range All {
		h := newHandler(t, m, llm.NewMockProvider())
		assert.Equal(t, m, h.Mode())
		assert.Equal(t, want[m], h.RenderOptions().HintCount, m)
	}
}

func TestGenerateExercise_UsesModeInstructions(t *testing.T) {
	for _, m := range All {
		t.Run(string(m), func(t *testing.T) {
			mock := llm.NewMockProvider(llm.MockResponse{Content: exerciseJSON(4)})
			h := newHandler(t, m, mock)

			s, err := h.GenerateExercise(context.Background(), "DPO", paper.FromTopic("DPO"), skeleton.Python)
			require.NoError(t, err)
			assert.Len(t, s.Slots, 4)
			assert.Contains(t, lastUserMessage(mock), profiles[m].generate)
		})
	}
}

func TestReviewAttempt_UsesModeInstructions(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{
		Content: json.RawMessage(`{"outcome":"correct","feedback":"Bug fixed."}`),
	})
	h := newHandler(t, Debug, mock)

	v := h.ReviewAttempt(context.Background(), review.Input{
		Topic:    "DPO",
		Language: "python",
		Slot:     skeleton.Slot{ID: 1, Goal: "fix the sign"},
		Attempt:  skeleton.Attempt{SlotID: 1, Text: "return -x"},
	})
	assert.Equal(t, review.OutcomeCorrect, v.Outcome)
	assert.Contains(t, lastUserMessage(mock), "buggy code")
}

func testSummary() tutor.Summary {
	return tutor.Summary{
		Topic: "DPO",
		Mode:  "tutorial",
		Rows: []tutor.SummaryRow{
			{ID: 1, Goal: "compute term 1", Status: tutor.StatusComplete, Attempts: 1, FirstTry: true},
		},
		Metrics:  tutor.Metrics{AttemptsTotal: 1, CorrectOnFirstTry: 1},
		Finished: true,
	}
}

func TestSummarize_AppendsNote(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(`"Nice work on the log-ratio."`)})
	h := newHandler(t, Tutorial, mock)

	out := h.Summarize(context.Background(), testSummary())
	assert.True(t, strings.HasPrefix(out, testSummary().Text()[:20]))
	assert.Contains(t, out, "Nice work on the log-ratio.")
}

func TestSummarize_FallsBackOnError(t *testing.T) {
	mock := llm.NewMockProvider()
	h := newHandler(t, Challenge, mock)

	out := h.Summarize(context.Background(), testSummary())
	assert.Equal(t, testSummary().Text(), out)
	assert.Equal(t, 1, mock.CallCount())
}

func TestSummarize_NilProvider(t *testing.T) {
	h, err := New(Guided, nil, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, testSummary().Text(), h.Summarize(context.Background(), testSummary()))
}
