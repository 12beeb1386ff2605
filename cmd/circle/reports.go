package main

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/iammorganparry/circle/internal/models"
)

var (
	dirSearch string
	dirStatus string
	dirCohort string

	summaryQuotes []string
)

var directoryCmd = &cobra.Command{
	Use:   "directory",
	Short: "List participants across cohorts",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()

		resp, err := newClient(models.RoleFacilitator).Directory(ctx, models.DirectoryQuery{
			Search:   dirSearch,
			Status:   dirStatus,
			CohortID: dirCohort,
		})
		if err != nil {
			return err
		}
		printDirectory(cmd.OutOrStdout(), resp)
		return nil
	},
}

var reportCmd = &cobra.Command{
	Use:   "report [scope]",
	Short: "Print the outcome report for a cohort or all",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()

		r, err := newClient(models.RoleFacilitator).Report(ctx, scopeArg(args))
		if err != nil {
			return err
		}
		printReport(cmd.OutOrStdout(), r)
		return nil
	},
}

var summaryCmd = &cobra.Command{
	Use:   "summary [scope]",
	Short: "Generate and store a grant narrative",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()

		resp, err := newClient(models.RoleFacilitator).GrantSummary(ctx, scopeArg(args), summaryQuotes)
		if err != nil {
			return err
		}
		printNarrative(cmd.OutOrStdout(), resp)
		return nil
	},
}

func init() {
	directoryCmd.Flags().StringVarP(&dirSearch, "search", "q", "", "match name or email")
	directoryCmd.Flags().StringVar(&dirStatus, "status", "", "Active, Completed, Withdrawn or All")
	directoryCmd.Flags().StringVar(&dirCohort, "cohort", "", "restrict to one cohort id")

	summaryCmd.Flags().StringArrayVar(&summaryQuotes, "quote", nil, "quote to include (repeatable)")
}

func scopeArg(args []string) string {
	if len(args) == 0 {
		return models.ScopeAll
	}
	return args[0]
}

var headerStyle = lipgloss.NewStyle().Bold(true)

func printDirectory(w io.Writer, resp *models.DirectoryResponse) {
	rows := make([][]string, 0, len(resp.Participants))
	for _, p := range resp.Participants {
		rows = append(rows, []string{p.Name, p.Email, p.CohortID, string(p.Status)})
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return lipgloss.NewStyle()
		}).
		Headers("Name", "Email", "Cohort", "Status").
		Rows(rows...)
	fmt.Fprintln(w, t.String())
	fmt.Fprintf(w, "%d of %d participants\n", len(resp.Participants), resp.Total)
}

func printReport(w io.Writer, r *models.CohortReport) {
	num := func(v float64) string { return strconv.FormatFloat(v, 'f', 1, 64) }
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("Scale", "Pre", "Post", "Change").
		Rows(
			[]string{"Connection", num(r.PreAverages.Connection), num(r.PostAverages.Connection), num(r.Deltas.ConnectionChange)},
			[]string{"Stress", num(r.PreAverages.Stress), num(r.PostAverages.Stress), num(r.Deltas.StressChange)},
			[]string{"Efficacy", num(r.PreAverages.Efficacy), num(r.PostAverages.Efficacy), num(r.Deltas.EfficacyChange)},
		)

	fmt.Fprintln(w, headerStyle.Render("Report: "+r.Scope))
	fmt.Fprintf(w, "Participants: %d\nSessions: %d\nCompletion: %d%%\n", r.Participants, r.Sessions, r.CompletionRatePercent)
	fmt.Fprintln(w, t.String())
	fmt.Fprintf(w, "Samples: %d pre, %d post\n", r.PreSamples, r.PostSamples)
}

func printNarrative(w io.Writer, resp *models.NarrativeResponse) {
	fmt.Fprintln(w, resp.Text)
	if resp.Fallback {
		fmt.Fprintln(w, "\n(fallback text, narrative provider unavailable)")
	}
	for _, q := range resp.Quotes {
		fmt.Fprintf(w, "  > %s\n", q)
	}
}
