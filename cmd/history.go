package cmd

import (
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
)

var (
	historyCmd = &cobra.Command{
		Use:   "history [scenario]",
		Short: "Show recorded results of previous smoke runs",
		Args:  cobra.MaximumNArgs(1),
		RunE:  historyRun,
	}

	passedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	failedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
)

func init() {
	rootCmd.AddCommand(historyCmd)
}

func historyRun(cmd *cobra.Command, args []string) error {
	scenario := ""
	if len(args) != 0 {
		scenario = args[0]
	}

	records, err := singletons.Database.Records(scenario)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		singletons.Logger.Info("no recorded runs", "scenario", scenario)
		return nil
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("SCENARIO", "STARTED", "ELAPSED", "OPS", "CANCELED", "MAX", "RESULT").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})

	for _, rec := range records {
		result := passedStyle.Render("ok")
		if !rec.Passed() {
			result = failedStyle.Render(rec.Failure)
		}

		t.Row(
			rec.Scenario,
			rec.StartedAt.Local().Format(time.DateTime),
			rec.Elapsed.Round(time.Millisecond).String(),
			strconv.FormatInt(rec.Operations, 10),
			strconv.FormatInt(rec.Canceled, 10),
			strconv.FormatInt(rec.MaxObserved, 10),
			result,
		)
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), t.Render())
	return err
}
