package main

import (
	"fmt"
	"maps"
	"slices"

	"github.com/spf13/cobra"

	"github.com/ecostep/ecostep/internal/scoring"
)

func newQuizCmd(a *app) *cobra.Command {
	values := make(map[scoring.Category]*int, len(scoring.Categories))
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "quiz",
		Short: "Answer the footprint quiz and record the result",
		Long: `Each answer is 0 (greenest) to 3. All five categories are required.
The result is recorded only when logged in.`,
		Example: `ecostep quiz --transport 1 --bottles 0 --food 2 --electricity 1 --recycle 0`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			answers := scoring.Answers{}
			for _, c := range scoring.Categories {
				if cmd.Flags().Changed(string(c)) {
					answers[c] = *values[c]
				}
			}
			svc, err := a.service(cmd.Context())
			if err != nil {
				return err
			}
			sub, err := svc.SubmitQuiz(cmd.Context(), answers)
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(a.out, sub)
			}
			tr, err := a.translator(cmd.Context())
			if err != nil {
				return err
			}
			as := sub.Assessment
			key := "band_" + as.Band.Key()
			fmt.Fprintln(a.out, tr.TData("quiz_score", map[string]any{"Score": sub.Score, "Max": sub.Max}))
			fmt.Fprintf(a.out, "%s %s\n", tr.T(key+"_label"), tr.T(key+"_message"))
			fmt.Fprintln(a.out, tr.TData("quiz_trees", map[string]any{"Trees": as.Trees}))
			if sub.Recorded {
				fmt.Fprintln(a.out, tr.T("quiz_saved"))
			} else {
				fmt.Fprintln(a.out, tr.T("quiz_not_saved"))
			}
			return nil
		},
	}
	for _, c := range scoring.Categories {
		values[c] = cmd.Flags().Int(string(c), 0, fmt.Sprintf("Answer for %s (0-%d)", c, scoring.MaxPerCategory))
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the submission as JSON")
	return cmd
}

func newRecordCmd(a *app) *cobra.Command {
	var score, outOf int
	var cats map[string]int
	cmd := &cobra.Command{
		Use:     "record",
		Short:   "Record an already computed score for the logged-in user",
		Example: `ecostep record --score 6 --category transport=2,food=1`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			for _, name := range slices.Sorted(maps.Keys(cats)) {
				if _, ok := scoring.ParseCategory(name); !ok {
					return fmt.Errorf("unknown category %q", name)
				}
			}
			svc, err := a.service(cmd.Context())
			if err != nil {
				return err
			}
			ok, err := svc.RecordResult(cmd.Context(), score, outOf, cats)
			if err != nil {
				return err
			}
			return printJSON(a.out, map[string]bool{"recorded": ok})
		},
	}
	cmd.Flags().IntVar(&score, "score", 0, "Quiz score")
	cmd.Flags().IntVar(&outOf, "max", scoring.MaxScore, "Maximum attainable score")
	cmd.Flags().StringToIntVar(&cats, "category", nil, "Per-category sub-scores (name=value,...)")
	_ = cmd.MarkFlagRequired("score")
	return cmd
}

func newHistoryCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "Print the logged-in user's results as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := a.service(cmd.Context())
			if err != nil {
				return err
			}
			h, err := svc.History(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(a.out, h)
		},
	}
}
