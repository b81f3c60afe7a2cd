package cmd

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/scoutjar/scoutjar-talent/internal/account"
	"github.com/scoutjar/scoutjar-talent/internal/notice"
	"github.com/scoutjar/scoutjar-talent/internal/scoutjar"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Show or edit the talent profile",
}

var profileShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the stored talent profile",
	Run: func(cmd *cobra.Command, _ []string) {
		ctx := context.Background()
		a := newApplication(ctx)
		defer a.Close()

		st := a.requireSession(ctx, cmd.OutOrStdout())

		// do not bother error since the talent was decoded from JSON
		pretty, _ := json.MarshalIndent(st.Talent, "", "  ")
		fmt.Fprintln(cmd.OutOrStdout(), string(pretty))
		fmt.Fprintf(cmd.OutOrStdout(), "mode: %s\n", st.ProfileMode)
	},
}

var profileUpdateCmd = &cobra.Command{
	Use:   "update",
	Short: "Change profile fields; only the flags given are changed",
	Run: func(cmd *cobra.Command, _ []string) {
		ctx := context.Background()
		a := newApplication(ctx)
		defer a.Close()

		out := cmd.OutOrStdout()
		st := a.requireSession(ctx, out)

		update := scoutjar.ProfileUpdateFrom(st.Talent)
		if err := applyProfileFlags(cmd.Flags(), &update); err != nil {
			a.exitWith(out, notice.Notice{Title: notice.TitleError, Message: err.Error()})
		}

		n, err := a.account.SaveProfile(ctx, update)
		if err != nil {
			a.exitWith(out, n)
		}
		a.show(out, n)
	},
}

var profileResumeCmd = &cobra.Command{
	Use:   "resume <file>",
	Short: "Upload a resume (.pdf, .doc, .docx or .txt)",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		a := newApplication(ctx)
		defer a.Close()

		out := cmd.OutOrStdout()
		a.requireSession(ctx, out)

		n, err := a.account.UploadResume(ctx, args[0])
		if err != nil {
			a.exitWith(out, n)
		}
		a.show(out, n)
	},
}

func init() {
	rootCmd.AddCommand(profileCmd)
	profileCmd.AddCommand(profileShowCmd, profileUpdateCmd, profileResumeCmd)

	f := profileUpdateCmd.Flags()
	f.String("bio", "", "short bio")
	f.String("resume-url", "", "link to the resume")
	f.String("skills", "", "comma separated skills")
	f.String("experience", "", "Senior, Intermediate or Junior")
	f.String("education", "", "education")
	f.String("work-preferences", "", "Remote, Hybrid or On-site")
	f.Float64("desired-salary", 0, "desired yearly salary")
	f.String("location", "", "location")
	f.String("employment-type", "", "Full-time, Part-time, Contract, Freelancer or Internship")
	f.String("availability", "", "availability")
}

func applyProfileFlags(flags *pflag.FlagSet, update *scoutjar.ProfileUpdate) error {
	strs := map[string]*string{
		"bio":              &update.Bio,
		"resume-url":       &update.Resume,
		"experience":       &update.Experience,
		"education":        &update.Education,
		"work-preferences": &update.WorkPreferences,
		"location":         &update.Location,
		"employment-type":  &update.EmploymentType,
		"availability":     &update.Availability,
	}
	for name, target := range strs {
		if !flags.Changed(name) {
			continue
		}
		value, err := flags.GetString(name)
		if err != nil {
			return err
		}
		*target = value
	}

	if flags.Changed("skills") {
		value, err := flags.GetString("skills")
		if err != nil {
			return err
		}
		update.Skills = account.ParseSkills(value)
	}

	if flags.Changed("desired-salary") {
		value, err := flags.GetFloat64("desired-salary")
		if err != nil {
			return err
		}
		update.DesiredSalary = value
	}

	return nil
}
