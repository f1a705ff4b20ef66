package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"downconv/internal/history"
	"downconv/internal/jobs"
)

type runView struct {
	ID         string               `json:"id"`
	Kind       string               `json:"kind"`
	Status     string               `json:"status"`
	StartedAt  time.Time            `json:"started_at"`
	FinishedAt time.Time            `json:"finished_at"`
	Total      int                  `json:"total"`
	Succeeded  int                  `json:"succeeded"`
	Failed     int                  `json:"failed"`
	Message    string               `json:"message,omitempty"`
	Items      []history.FailedItem `json:"failed_items,omitempty"`
}

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect recorded runs",
	}
	historyCmd.AddCommand(newHistoryListCommand(ctx))
	historyCmd.AddCommand(newHistoryShowCommand(ctx))
	historyCmd.AddCommand(newHistoryPruneCommand(ctx))
	return historyCmd
}

func newHistoryListCommand(ctx *commandContext) *cobra.Command {
	var kindFlag string
	var limit int
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			var kind history.Kind
			if kindFlag != "" {
				parsed, err := history.ParseKind(kindFlag)
				if err != nil {
					return err
				}
				kind = parsed
			}
			store, err := ctx.historyStore()
			if err != nil {
				return err
			}
			runs, err := store.List(cmd.Context(), kind, limit)
			if err != nil {
				return err
			}
			if asJSON {
				views := make([]runView, 0, len(runs))
				for _, run := range runs {
					views = append(views, toRunView(run, nil))
				}
				return writeJSON(cmd, views)
			}
			if len(runs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Nessuna esecuzione registrata")
				return nil
			}
			rows := make([][]string, 0, len(runs))
			for _, run := range runs {
				rows = append(rows, []string{
					shortID(run.ID),
					string(run.Kind),
					run.Status(),
					humanize.Time(run.FinishedAt),
					run.Duration().Round(time.Second).String(),
					strconv.Itoa(run.Total),
					strconv.Itoa(run.Failed),
				})
			}
			fmt.Fprint(cmd.OutOrStdout(), renderTable(
				[]string{"ID", "Kind", "Status", "Finished", "Took", "Items", "Failed"},
				rows, 4, 5, 6,
			))
			stats, err := store.Stats(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Totale: %d conversioni, %d download\n",
				stats[history.KindConvert], stats[history.KindDownload])
			return nil
		},
	}
	cmd.Flags().StringVarP(&kindFlag, "kind", "k", "", "Filter by kind (convert or download)")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum runs to list")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}

func newHistoryShowCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show [run-id]",
		Short: "Show a run and its failed items (default: latest)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.historyStore()
			if err != nil {
				return err
			}
			run, err := resolveRun(cmd, store, args)
			if err != nil {
				return err
			}
			items, err := store.FailedItems(cmd.Context(), run.ID)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd, toRunView(run, items))
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Run:       %s\n", run.ID)
			fmt.Fprintf(out, "Kind:      %s\n", run.Kind)
			fmt.Fprintf(out, "Status:    %s\n", run.Status())
			fmt.Fprintf(out, "Finished:  %s (%s)\n", run.FinishedAt.Local().Format(time.DateTime), humanize.Time(run.FinishedAt))
			fmt.Fprintf(out, "Items:     %d ok, %d failed, %d total\n", run.Succeeded, run.Failed, run.Total)
			fmt.Fprintf(out, "Annullato: %s\n", yesNo(run.Cancelled))
			if run.Message != "" {
				fmt.Fprintf(out, "Message:\n%s\n", run.Message)
			}
			if len(items) == 0 {
				return nil
			}
			rows := make([][]string, 0, len(items))
			for _, item := range items {
				rows = append(rows, []string{strconv.Itoa(item.Position + 1), jobs.ShortenURL(item.Item), item.Detail})
			}
			fmt.Fprint(out, renderTable([]string{"#", "Item", "Error"}, rows, 0))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}

func newHistoryPruneCommand(ctx *commandContext) *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete runs older than the given number of days",
		RunE: func(cmd *cobra.Command, args []string) error {
			if days <= 0 {
				return errors.New("--days must be positive")
			}
			store, err := ctx.historyStore()
			if err != nil {
				return err
			}
			removed, err := store.Prune(cmd.Context(), time.Now().AddDate(0, 0, -days))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Rimosse %d esecuzioni\n", removed)
			return nil
		},
	}
	cmd.Flags().IntVar(&days, "days", 30, "Age threshold in days")
	return cmd
}

func resolveRun(cmd *cobra.Command, store *history.Store, args []string) (history.Run, error) {
	if len(args) == 1 {
		return store.Get(cmd.Context(), args[0])
	}
	runs, err := store.List(cmd.Context(), "", 1)
	if err != nil {
		return history.Run{}, err
	}
	if len(runs) == 0 {
		return history.Run{}, fmt.Errorf("%w: history is empty", history.ErrRunNotFound)
	}
	return runs[0], nil
}

func toRunView(run history.Run, items []history.FailedItem) runView {
	return runView{
		ID:         run.ID,
		Kind:       string(run.Kind),
		Status:     run.Status(),
		StartedAt:  run.StartedAt,
		FinishedAt: run.FinishedAt,
		Total:      run.Total,
		Succeeded:  run.Succeeded,
		Failed:     run.Failed,
		Message:    run.Message,
		Items:      items,
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
