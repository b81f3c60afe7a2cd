package cmd

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/scoutjar/scoutjar-talent/internal/export"
	"github.com/scoutjar/scoutjar-talent/internal/logger"
	"github.com/scoutjar/scoutjar-talent/internal/scoutjar"
)

var appliedCmd = &cobra.Command{
	Use:   "applied",
	Short: "List the jobs the talent applied to",
	Run: func(cmd *cobra.Command, _ []string) {
		applied(cmd)
	},
}

func init() {
	rootCmd.AddCommand(appliedCmd)

	appliedCmd.Flags().StringP("export", "o", "", "write the list to a file (.xlsx or .json)")
	appliedCmd.Flags().Bool("export-temp", false, "write the list to a JSON file in the temp dir")
}

func applied(cmd *cobra.Command) {
	ctx := context.Background()
	a := newApplication(ctx)
	defer a.Close()

	out := cmd.OutOrStdout()
	st := a.requireSession(ctx, out)
	log := logger.WithFields(a.logger, logger.TalentFields(st.TalentID().String(), "")...)

	jobs, err := a.core.AppliedJobs(ctx, st.TalentID())
	if err != nil {
		log.Fatal("getting applied jobs", zap.Error(err))
	}

	counts, err := a.core.ApplicantCounts(ctx)
	if err != nil {
		log.Warn("applicant counts unavailable", zap.Error(err))
	}
	a.counts.Replace(counts)

	rows := appliedRows(ctx, a, log, jobs)
	log.Info("getting applied jobs", zap.Int("count", len(rows)))

	printApplied(out, rows)

	path, _ := cmd.Flags().GetString("export")
	temp, _ := cmd.Flags().GetBool("export-temp")
	if path == "" && !temp {
		return
	}

	written, err := export.New(a.fs).AppliedJobs(path, rows)
	if err != nil {
		log.Fatal("exporting applied jobs", zap.Error(err))
	}
	log.Info("dumping applied jobs to file", zap.String("filename", written))
}

func appliedRows(ctx context.Context, a *application, log *zap.Logger, jobs []scoutjar.Job) []export.Row {
	rows := make([]export.Row, 0, len(jobs))
	for _, job := range jobs {
		row := export.Row{
			JobID:      job.JobID,
			JobTitle:   job.JobTitle,
			MatchScore: job.MatchScore,
			Applicants: a.counts.Count(job.JobID),
		}

		info, err := a.recruiters.Get(ctx, job.JobID)
		if err != nil {
			log.Debug("recruiter unavailable", zap.String("job_id", job.JobID.String()), zap.Error(err))
		} else {
			row.Recruiter = info.FullName
			row.Company = info.Company
			if row.Company == "" {
				row.Company = info.Organization
			}
		}

		rows = append(rows, row)
	}
	return rows
}

func printApplied(out io.Writer, rows []export.Row) {
	if len(rows) == 0 {
		fmt.Fprintln(out, "You have not applied to any jobs yet.")
		return
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tAPPLICANTS\tRECRUITER\tCOMPANY")
	for _, row := range rows {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n", row.JobID, row.JobTitle, row.Applicants, row.Recruiter, row.Company)
	}
	w.Flush()
}
