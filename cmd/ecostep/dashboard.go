package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/mergestat/timediff"
	"github.com/spf13/cobra"

	"github.com/ecostep/ecostep/internal/errs"
	"github.com/ecostep/ecostep/internal/locale"
	"github.com/ecostep/ecostep/internal/scoring"
)

func newDashboardCmd(a *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Show statistics for the logged-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := a.service(cmd.Context())
			if err != nil {
				return err
			}
			p, err := svc.CurrentUser(cmd.Context())
			if err != nil {
				return err
			}
			if p == nil {
				return errs.ErrNotLoggedIn
			}
			d := scoring.Summarize(*p)
			if asJSON {
				return printJSON(a.out, d)
			}
			tr, err := a.translator(cmd.Context())
			if err != nil {
				return err
			}
			writeDashboard(a.out, tr, p.Name, d)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the dashboard as JSON")
	return cmd
}

func writeDashboard(w io.Writer, tr *locale.Translator, name string, d scoring.Dashboard) {
	fmt.Fprintln(w, tr.TData("dash_greeting", map[string]any{"Name": name, "Mood": tr.T("mood_" + string(d.Mood))}))
	if d.Latest == nil {
		fmt.Fprintln(w, tr.T("dash_no_results"))
	} else {
		fmt.Fprintln(w, tr.TData("dash_latest", map[string]any{
			"Score": d.Latest.Score,
			"Max":   d.Latest.Max,
			"Ago":   timediff.TimeDiff(d.Latest.TS.Time()),
		}))
		fmt.Fprintln(w, tr.TData("dash_best", map[string]any{"Best": *d.Best}))
	}
	fmt.Fprintln(w, tr.TPlural("dash_streak", d.StreakDays))

	badges := tr.TData("dash_badges", map[string]any{"Count": d.BadgeCount()})
	if d.BadgeCount() > 0 {
		badges += " (" + strings.Join(d.Badges, ", ") + ")"
	}
	fmt.Fprintln(w, badges)

	if len(d.Trend) > 0 {
		scores := make([]string, len(d.Trend))
		for i, r := range d.Trend {
			scores[i] = fmt.Sprint(r.Score)
		}
		fmt.Fprintln(w, tr.TData("dash_trend", map[string]any{"Scores": strings.Join(scores, " ")}))
	}

	parts := make([]string, 0, len(scoring.Categories))
	for _, c := range scoring.Categories {
		parts = append(parts, fmt.Sprintf("%s=%d", c, d.Breakdown[string(c)]))
	}
	fmt.Fprintln(w, tr.TData("dash_breakdown", map[string]any{"Parts": strings.Join(parts, " ")}))

	if len(d.Recent) > 0 {
		fmt.Fprintln(w, tr.T("dash_recent"))
		for _, r := range d.Recent {
			fmt.Fprintf(w, "  %2d / %d  %s\n", r.Score, r.Max, timediff.TimeDiff(r.TS.Time()))
		}
	}
	writeImpact(w, tr, d.Impact)
}

func writeImpact(w io.Writer, tr *locale.Translator, im scoring.Impact) {
	fmt.Fprintln(w, tr.TData("impact_year", map[string]any{
		"Trees": humanize.Comma(int64(im.TreesPerYear)),
		"Water": humanize.Comma(int64(im.LitersWaterSaved)),
		"Kwh":   humanize.Comma(int64(im.KwhSaved)),
		"Km":    humanize.Comma(int64(im.KmAvoided)),
	}))
}

func newProjectCmd(a *app) *cobra.Command {
	var score, outOf int
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "project",
		Short: "Project the impact of a score now and by 2050",
		Long: `Without --score the latest recorded result of the logged-in user is used,
falling back to a score of 10.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !cmd.Flags().Changed("score") {
				score, outOf = 10, scoring.MaxScore
				svc, err := a.service(cmd.Context())
				if err != nil {
					return err
				}
				h, err := svc.History(cmd.Context())
				if err != nil {
					return err
				}
				if n := len(h); n > 0 {
					score, outOf = h[n-1].Score, h[n-1].Max
				}
			}
			im := scoring.ProjectImpact(score, outOf)
			fut := scoring.ProjectFuture(score)
			if asJSON {
				return printJSON(a.out, struct {
					Score  int            `json:"score"`
					Max    int            `json:"max"`
					Impact scoring.Impact `json:"impact"`
					Future scoring.Future `json:"future"`
				}{score, outOf, im, fut})
			}
			tr, err := a.translator(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out, tr.TData("project_score", map[string]any{"Score": score, "Max": outOf}))
			writeImpact(a.out, tr, im)
			fmt.Fprintln(a.out, tr.TData("project_2050", map[string]any{
				"Waste":  humanize.Comma(int64(fut.LitersWasteBy2050)),
				"Energy": humanize.Comma(int64(fut.ExtraEnergyBy2050)),
				"Trees":  humanize.Comma(int64(fut.TreesSavedBy2050)),
			}))
			return nil
		},
	}
	cmd.Flags().IntVar(&score, "score", 0, "Score to project")
	cmd.Flags().IntVar(&outOf, "max", scoring.MaxScore, "Maximum attainable score")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the projection as JSON")
	return cmd
}
