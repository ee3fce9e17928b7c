package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/zirakhr/zirak/internal/store"
)

var llmCmd = &cobra.Command{
	Use:   "llm",
	Short: "Inspect LLM request/response events",
}

var llmListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent LLM events",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		purpose, _ := cmd.Flags().GetString("purpose")
		since, _ := cmd.Flags().GetDuration("since")

		return withStore(cmd, func(ctx context.Context, s *store.Store) error {
			opts := store.QueryOpts{Limit: limit, Purpose: purpose}
			if since > 0 {
				opts.From = time.Now().Add(-since)
			}
			events, err := s.LLMEvents().List(ctx, opts)
			if err != nil {
				return fmt.Errorf("query events: %w", err)
			}
			if len(events) == 0 {
				fmt.Println("No LLM events found.")
				return nil
			}

			fmt.Printf("%-36s  %-19s  %-14s  %-28s  %-6s  %-6s  %-7s  %s\n",
				"ID", "Timestamp", "Purpose", "Model", "In", "Out", "Ms", "OK")
			fmt.Println(strings.Repeat("─", 131))
			for _, e := range events {
				ok := "✓"
				if !e.Success {
					ok = "✗"
				}
				fmt.Printf("%-36s  %-19s  %-14s  %-28s  %-6d  %-6d  %-7d  %s\n",
					e.ID,
					e.At.Local().Format(time.DateTime),
					e.Purpose,
					truncate(e.Model, 28),
					e.InputTokens,
					e.OutputTokens,
					e.LatencyMs,
					ok,
				)
			}
			return nil
		})
	},
}

var llmViewCmd = &cobra.Command{
	Use:   "view <id>",
	Short: "View full request/response for an LLM event",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd, func(ctx context.Context, s *store.Store) error {
			e, err := s.LLMEvents().Get(ctx, args[0])
			if errors.Is(err, store.ErrEventNotFound) {
				return fmt.Errorf("event %s not found", args[0])
			}
			if err != nil {
				return err
			}

			sep := strings.Repeat("─", 60)
			fmt.Printf("ID:        %s\n", e.ID)
			fmt.Printf("Time:      %s\n", e.At.Local().Format(time.DateTime))
			fmt.Printf("Provider:  %s\n", e.Provider)
			fmt.Printf("Model:     %s\n", e.Model)
			fmt.Printf("Purpose:   %s\n", e.Purpose)
			fmt.Printf("Tokens:    %d in / %d out\n", e.InputTokens, e.OutputTokens)
			fmt.Printf("Cost:      %s\n", formatCost(e.CostUSD))
			fmt.Printf("Latency:   %dms\n", e.LatencyMs)
			fmt.Printf("Success:   %v\n", e.Success)
			if e.ErrorMessage != "" {
				fmt.Printf("Error:     %s\n", e.ErrorMessage)
			}

			for _, part := range []struct{ title, body string }{
				{"REQUEST", e.RequestBody},
				{"RESPONSE", e.ResponseBody},
			} {
				fmt.Println(sep)
				fmt.Println(part.title)
				fmt.Println(sep)
				if part.body == "" {
					fmt.Println("(not captured)")
					continue
				}
				fmt.Println(part.body)
			}
			return nil
		})
	},
}

var llmStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show aggregated LLM token usage and cost",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd, func(ctx context.Context, s *store.Store) error {
			byPurpose, err := s.LLMEvents().UsageByPurpose(ctx)
			if err != nil {
				return err
			}
			if len(byPurpose) == 0 {
				fmt.Println("No LLM usage recorded yet.")
				return nil
			}
			byModel, err := s.LLMEvents().UsageByModel(ctx)
			if err != nil {
				return err
			}

			printUsage("Purpose", byPurpose)
			fmt.Println()
			printUsage("Model", byModel)
			return nil
		})
	},
}

func printUsage(label string, rows []store.Usage) {
	line := strings.Repeat("─", 88)
	fmt.Println(line)
	fmt.Printf("%-32s  %6s  %10s  %10s  %8s  %10s\n", label, "Calls", "Input", "Output", "Avg Ms", "Cost")
	fmt.Println(line)

	var total store.Usage
	for _, u := range rows {
		fmt.Printf("%-32s  %6d  %10d  %10d  %8.0f  %10s\n",
			truncate(u.Key, 32), u.Calls, u.InputTokens, u.OutputTokens, u.AvgLatencyMs, formatCost(u.CostUSD))
		total.Calls += u.Calls
		total.InputTokens += u.InputTokens
		total.OutputTokens += u.OutputTokens
		total.CostUSD += u.CostUSD
	}
	fmt.Println(line)
	fmt.Printf("%-32s  %6d  %10d  %10d  %8s  %10s\n",
		"TOTAL", total.Calls, total.InputTokens, total.OutputTokens, "", formatCost(total.CostUSD))
}

func formatCost(usd float64) string {
	if usd < 0.01 {
		return fmt.Sprintf("$%.4f", usd)
	}
	return fmt.Sprintf("$%.2f", usd)
}

// withStore opens only the database, for read-only commands.
func withStore(cmd *cobra.Command, fn func(ctx context.Context, s *store.Store) error) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	s, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()
	return fn(ctx, s)
}

func init() {
	llmListCmd.Flags().IntP("limit", "n", 20, "Number of events to show")
	llmListCmd.Flags().StringP("purpose", "p", "", "Filter by purpose (e.g. question-gen, code-grading)")
	llmListCmd.Flags().Duration("since", 0, "Only events newer than this (e.g. 24h)")

	llmCmd.AddCommand(llmListCmd)
	llmCmd.AddCommand(llmViewCmd)
	llmCmd.AddCommand(llmStatsCmd)
}
