package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"NewsDedup/internal/usecase"
)

func printRun(w io.Writer, res usecase.RunResult) {
	if res.Find != nil {
		printFind(w, *res.Find)
	}

	bold := color.New(color.Bold).SprintFunc()
	for _, s := range res.Stages {
		sum := s.Report.Summary
		fmt.Fprintf(w, "\n%s\n", bold("--- stage "+s.Stage+" ---"))
		if s.Report.DryRun {
			fmt.Fprintf(w, "%s\n", color.YellowString("DRY RUN MODE - nothing was deleted"))
		}
		fmt.Fprintf(w, "Duplicate groups: %d\n", sum.TotalDuplicateGroups)
		fmt.Fprintf(w, "Kept: %s\n", color.GreenString("%d", sum.TotalKept))
		fmt.Fprintf(w, "Deleted: %s (archive %d, duplicates %d)\n",
			color.RedString("%d", sum.TotalDeleted), sum.TotalArchiveDeleted, sum.TotalInternalDeleted)
		fmt.Fprintf(w, "Strategic kept: %d\n", sum.TotalStrategicKept)
		if sum.TotalRelevanceKept > 0 {
			fmt.Fprintf(w, "Relevance kept: %d\n", sum.TotalRelevanceKept)
		}
		if sum.DeletionSkipped && !s.Report.DryRun {
			fmt.Fprintln(w, "No duplicate records to delete.")
		}
		if s.ReportPath != "" {
			fmt.Fprintf(w, "Report: %s\n", s.ReportPath)
		}
	}
}

func printFind(w io.Writer, res usecase.FindResult) {
	fmt.Fprintf(w, "Duplicated links found: %d\n", len(res.Report.Duplicates))
	if res.ReportPath != "" {
		fmt.Fprintf(w, "Report: %s\n", res.ReportPath)
	}
}

func printDone(w io.Writer) {
	fmt.Fprintf(w, "\n%s\n", color.GreenString("Done."))
}
