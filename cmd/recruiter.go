package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/scoutjar/scoutjar-talent/internal/notice"
	"github.com/scoutjar/scoutjar-talent/internal/scoutjar"
)

var recruiterCmd = &cobra.Command{
	Use:   "recruiter <recruiter-id>",
	Short: "Show a recruiter's public profile",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		a := newApplication(ctx)
		defer a.Close()

		out := cmd.OutOrStdout()

		info, err := a.core.RecruiterProfile(ctx, scoutjar.ID(args[0]))
		switch {
		case errors.Is(err, scoutjar.ErrNotFound):
			a.exitWith(out, notice.New(notice.TitleError, "Recruiter %s was not found", args[0]))
		case err != nil:
			a.logger.Warn("getting recruiter profile", zap.Error(err))
			a.exitWith(out, notice.Notice{Title: notice.TitleError, Message: scoutjar.UserMessage(err)})
		}

		fmt.Fprintln(out, info.FullName)
		for _, line := range [][2]string{
			{"company", info.Company},
			{"organization", info.Organization},
			{"email", info.Email},
			{"bio", info.Bio},
		} {
			if line[1] != "" {
				fmt.Fprintf(out, "  %s: %s\n", line[0], line[1])
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(recruiterCmd)
}
