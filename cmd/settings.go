package cmd

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/scoutjar/scoutjar-talent/internal/notice"
	"github.com/scoutjar/scoutjar-talent/internal/scoutjar"
	"github.com/scoutjar/scoutjar-talent/internal/utils"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Profile mode and passive matching preferences",
}

var settingsModeCmd = &cobra.Command{
	Use:       "mode <active|passive>",
	Short:     "Switch between active and passive matching",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{string(scoutjar.ModeActive), string(scoutjar.ModePassive)},
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		a := newApplication(ctx)
		defer a.Close()

		out := cmd.OutOrStdout()
		a.requireSession(ctx, out)

		n, err := a.account.SetMode(ctx, scoutjar.ProfileMode(args[0]))
		if err != nil {
			a.exitWith(out, n)
		}
		a.show(out, n)
	},
}

var settingsPreferencesCmd = &cobra.Command{
	Use:   "preferences",
	Short: "Show passive preferences, or change them with flags",
	Run: func(cmd *cobra.Command, _ []string) {
		ctx := context.Background()
		a := newApplication(ctx)
		defer a.Close()

		out := cmd.OutOrStdout()
		a.requireSession(ctx, out)

		prefs, err := a.account.Preferences(ctx)
		if err != nil {
			a.exitWith(out, notice.Notice{Title: notice.TitleError, Message: scoutjar.UserMessage(err)})
		}

		if cmd.Flags().NFlag() == 0 {
			pretty, _ := json.MarshalIndent(prefs, "", "  ")
			fmt.Fprintln(out, string(pretty))
			return
		}

		if err := applyPreferenceFlags(cmd.Flags(), prefs); err != nil {
			a.exitWith(out, notice.Notice{Title: notice.TitleError, Message: err.Error()})
		}

		n, err := a.account.SavePreferences(ctx, *prefs)
		if err != nil {
			a.exitWith(out, n)
		}
		a.show(out, n)
	},
}

func init() {
	rootCmd.AddCommand(settingsCmd)
	settingsCmd.AddCommand(settingsModeCmd, settingsPreferencesCmd)

	f := settingsPreferencesCmd.Flags()
	f.Float64("salary-min", 0, "minimum salary")
	f.Float64("salary-max", 0, "maximum salary")
	f.String("dream-companies", "", "comma separated companies")
	f.Int("match-threshold", scoutjar.DefaultMatchThreshold, "minimum match percentage (0-100)")
	f.Bool("remote", true, "prefer remote jobs")
	f.String("industries", "", "comma separated industries")
	f.String("roles", "", "comma separated roles")
}

func applyPreferenceFlags(flags *pflag.FlagSet, prefs *scoutjar.PassivePreferences) error {
	var err error
	get := func(name string, set func() error) {
		if err == nil && flags.Changed(name) {
			err = set()
		}
	}

	get("salary-min", func() error {
		v, err := flags.GetFloat64("salary-min")
		prefs.SalaryMin = scoutjar.Number(v)
		return err
	})
	get("salary-max", func() error {
		v, err := flags.GetFloat64("salary-max")
		prefs.SalaryMax = scoutjar.Number(v)
		return err
	})
	get("match-threshold", func() error {
		v, err := flags.GetInt("match-threshold")
		prefs.MatchThreshold = v
		return err
	})
	get("remote", func() error {
		v, err := flags.GetBool("remote")
		prefs.RemotePreference = v
		return err
	})
	get("dream-companies", func() error {
		v, err := flags.GetString("dream-companies")
		prefs.DreamCompanies = utils.SplitList(v)
		return err
	})
	get("industries", func() error {
		v, err := flags.GetString("industries")
		prefs.PreferredIndustries = utils.SplitList(v)
		return err
	})
	get("roles", func() error {
		v, err := flags.GetString("roles")
		prefs.PreferredRoles = utils.SplitList(v)
		return err
	})

	return err
}
