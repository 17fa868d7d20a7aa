package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/sherpa/internal/llm"
	"github.com/abhisek/sherpa/internal/store"
)

const timeLayout = "2006-01-02 15:04:05"

var llmCmd = &cobra.Command{
	Use:   "llm",
	Short: "Inspect LLM calls made while generating and reviewing exercises",
}

var llmListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent LLM calls, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		purpose, _ := cmd.Flags().GetString("purpose")
		asJSON, _ := cmd.Flags().GetBool("json")
		out := cmd.OutOrStdout()

		return withStore(cmd, func(ctx context.Context, repo store.EventRepo) error {
			events, err := repo.QueryLLMEvents(ctx, store.QueryOpts{Limit: limit, Purpose: purpose})
			if err != nil {
				return fmt.Errorf("query events: %w", err)
			}
			if asJSON {
				return writeEventsJSON(out, events)
			}
			if len(events) == 0 {
				fmt.Fprintln(out, "No LLM calls recorded.")
				return nil
			}

			fmt.Fprintf(out, "%-5s  %-19s  %-9s  %-11s  %-28s  %6s  %6s  %7s  %s\n",
				"ID", "Timestamp", "Purpose", "Provider", "Model", "In", "Out", "Ms", "OK")
			rule(out, 108)
			for _, e := range events {
				ok := "✓"
				if !e.Success {
					ok = "✗ " + truncate(e.ErrorMessage, 40)
				}
				fmt.Fprintf(out, "%-5d  %-19s  %-9s  %-11s  %-28s  %6d  %6d  %7d  %s\n",
					e.ID, e.Timestamp.Local().Format(timeLayout), e.Purpose, e.Provider,
					truncate(e.Model, 28), e.InputTokens, e.OutputTokens, e.LatencyMs, ok)
			}
			return nil
		})
	},
}

// listedEvent is the --json shape of one call. Bodies are left out; use
// `sherpa llm view` for those.
type listedEvent struct {
	ID           int    `json:"id"`
	Timestamp    string `json:"timestamp"`
	Purpose      string `json:"purpose"`
	Provider     string `json:"provider"`
	Model        string `json:"model"`
	InputTokens  int    `json:"input_tokens"`
	OutputTokens int    `json:"output_tokens"`
	LatencyMs    int64  `json:"latency_ms"`
	Success      bool   `json:"success"`
	Error        string `json:"error,omitempty"`
}

func writeEventsJSON(w io.Writer, events []store.LLMEvent) error {
	out := make([]listedEvent, len(events))
	for i, e := range events {
		out[i] = listedEvent{
			ID:           e.ID,
			Timestamp:    e.Timestamp.UTC().Format("2006-01-02T15:04:05.000Z"),
			Purpose:      e.Purpose,
			Provider:     e.Provider,
			Model:        e.Model,
			InputTokens:  e.InputTokens,
			OutputTokens: e.OutputTokens,
			LatencyMs:    e.LatencyMs,
			Success:      e.Success,
			Error:        e.ErrorMessage,
		}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

var llmViewCmd = &cobra.Command{
	Use:   "view <id>",
	Short: "Show the full prompt and reply of one LLM call",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid ID %q: %w", args[0], err)
		}
		out := cmd.OutOrStdout()

		return withStore(cmd, func(ctx context.Context, repo store.EventRepo) error {
			e, err := repo.GetLLMEvent(ctx, id)
			if err != nil {
				return fmt.Errorf("get event: %w", err)
			}
			if e == nil {
				return fmt.Errorf("event %d not found", id)
			}

			fields := [][2]string{
				{"ID", strconv.Itoa(e.ID)},
				{"Time", e.Timestamp.Local().Format(timeLayout)},
				{"Provider", e.Provider},
				{"Model", e.Model},
				{"Purpose", e.Purpose},
				{"Tokens", fmt.Sprintf("%d in / %d out", e.InputTokens, e.OutputTokens)},
				{"Latency", fmt.Sprintf("%dms", e.LatencyMs)},
				{"Success", strconv.FormatBool(e.Success)},
			}
			if e.ErrorMessage != "" {
				fields = append(fields, [2]string{"Error", e.ErrorMessage})
			}
			for _, f := range fields {
				fmt.Fprintf(out, "%-10s %s\n", f[0]+":", f[1])
			}

			section(out, "REQUEST", e.RequestBody)
			section(out, "RESPONSE", e.ResponseBody)
			return nil
		})
	},
}

func section(w io.Writer, title, body string) {
	fmt.Fprintln(w)
	rule(w, 60)
	fmt.Fprintln(w, title)
	rule(w, 60)
	if body == "" {
		body = "(not captured)"
	}
	fmt.Fprintln(w, strings.TrimRight(body, "\n"))
}

var llmStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show token usage per purpose and estimated cost per model",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()

		return withStore(cmd, func(ctx context.Context, repo store.EventRepo) error {
			byPurpose, err := repo.LLMUsageByPurpose(ctx)
			if err != nil {
				return fmt.Errorf("query usage: %w", err)
			}
			if len(byPurpose) == 0 {
				fmt.Fprintln(out, "No LLM usage recorded yet.")
				return nil
			}

			fmt.Fprintln(out, "Usage by Purpose")
			rule(out, 72)
			fmt.Fprintf(out, "%-16s  %6s  %10s  %10s  %10s  %8s\n",
				"Purpose", "Calls", "Input", "Output", "Total", "Avg Ms")
			rule(out, 72)
			var calls, in, outTok int
			for _, u := range byPurpose {
				fmt.Fprintf(out, "%-16s  %6d  %10d  %10d  %10d  %8d\n",
					u.Purpose, u.Calls, u.InputTokens, u.OutputTokens, u.InputTokens+u.OutputTokens, u.AvgLatencyMs)
				calls += u.Calls
				in += u.InputTokens
				outTok += u.OutputTokens
			}
			rule(out, 72)
			fmt.Fprintf(out, "%-16s  %6d  %10d  %10d  %10d\n", "TOTAL", calls, in, outTok, in+outTok)

			byModel, err := repo.LLMUsageByModel(ctx)
			if err != nil {
				return fmt.Errorf("query model usage: %w", err)
			}
			printCosts(out, byModel)
			return nil
		})
	},
}

// printCosts prices each model's usage. Models without a known price are
// listed with "?" and make the total partial.
func printCosts(w io.Writer, usage []store.LLMUsage) {
	if len(usage) == 0 {
		return
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Estimated Cost (USD)")
	rule(w, 72)
	fmt.Fprintf(w, "%-32s  %6s  %10s  %10s  %10s\n", "Model", "Calls", "Input", "Output", "Cost")
	rule(w, 72)

	var total float64
	var unknown []string
	for _, u := range usage {
		cost := "?"
		if price := llm.LookupCost(u.Model); price != nil {
			c := price.Cost(u.InputTokens, u.OutputTokens)
			total += c
			cost = formatCost(c)
		} else {
			unknown = append(unknown, u.Model)
		}
		fmt.Fprintf(w, "%-32s  %6d  %10d  %10d  %10s\n",
			truncate(u.Model, 32), u.Calls, u.InputTokens, u.OutputTokens, cost)
	}

	rule(w, 72)
	label := "TOTAL"
	if len(unknown) > 0 {
		label = "TOTAL (partial)"
	}
	fmt.Fprintf(w, "%-32s  %6s  %10s  %10s  %10s\n", label, "", "", "", formatCost(total))
	if len(unknown) > 0 {
		fmt.Fprintf(w, "\nPricing unavailable for: %s\n", strings.Join(unknown, ", "))
	}
}

func init() {
	llmListCmd.Flags().IntP("limit", "n", 20, "Number of calls to show")
	llmListCmd.Flags().StringP("purpose", "p", "", "Only show one purpose: skeleton, review or summary")
	llmListCmd.Flags().Bool("json", false, "Print calls as JSON")

	llmCmd.AddCommand(llmListCmd, llmViewCmd, llmStatsCmd)
}
