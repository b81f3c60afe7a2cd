package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/scoutjar/scoutjar-talent/internal/bootstrap"
	"github.com/scoutjar/scoutjar-talent/internal/feed"
	"github.com/scoutjar/scoutjar-talent/internal/filtering"
	"github.com/scoutjar/scoutjar-talent/internal/logger"
	"github.com/scoutjar/scoutjar-talent/internal/scoutjar"
	"github.com/scoutjar/scoutjar-talent/internal/utils"
)

const (
	PromptApply   = "Apply (swipe right)"
	PromptReject  = "Reject (swipe left)"
	PromptNext    = "Next job"
	PromptPrev    = "Previous job"
	PromptRefresh = "Refresh"
	PromptQuit    = "Quit"

	descriptionPreview = 280
)

var errExit = errors.New("exit requested")

var feedPrompt = promptui.Select{
	Label: "What next?",
	Items: []string{PromptApply, PromptReject, PromptNext, PromptPrev, PromptRefresh, PromptQuit},
}

var feedCmd = &cobra.Command{
	Use:   "feed",
	Short: "Swipe through matched jobs",
	Run: func(cmd *cobra.Command, _ []string) {
		runFeed(cmd)
	},
}

func init() {
	rootCmd.AddCommand(feedCmd)

	feedCmd.Flags().BoolP("exclude-applied", "x", false, "hide jobs the talent already applied to")
	feedCmd.Flags().Bool("no-filters", false, "skip every configured feed filter")
	feedCmd.Flags().BoolP("auto-apply", "y", false, "apply to every job in the feed without asking")
	feedCmd.Flags().BoolP("list", "l", false, "print the feed and the filter pipeline, then exit")
}

func runFeed(cmd *cobra.Command) {
	ctx := context.Background()
	a := newApplication(ctx)
	defer a.Close()

	out := cmd.OutOrStdout()
	st := a.requireSession(ctx, out)

	if exclude, _ := cmd.Flags().GetBool("exclude-applied"); exclude {
		a.config.Feed.ExcludeApplied = true
	}
	if skip, _ := cmd.Flags().GetBool("no-filters"); skip {
		for _, step := range filtering.Steps(&a.config.Feed.Config) {
			a.disabledFilters[step.Name()] = "skip requested via flag"
		}
	}

	log := logger.WithFields(a.logger, logger.TalentFields(st.TalentID().String(), "")...)

	result := a.boot.Run(ctx)
	logBootstrap(log, result)

	if list, _ := cmd.Flags().GetBool("list"); list {
		printFilters(out, a.filterSteps(&a.config.Feed.Config))
		for _, job := range a.feed.Jobs() {
			printJob(out, job, a.counts.Count(job.JobID), nil)
		}
		return
	}

	if a.feed.Empty() {
		log.Info("exiting", zap.String("reason", "no jobs left in the feed"))
		return
	}

	if auto, _ := cmd.Flags().GetBool("auto-apply"); auto {
		autoApply(ctx, a, out, st.TalentID())
		return
	}

	for {
		job, ok := a.feed.Current()
		if !ok {
			log.Info("exiting", zap.String("reason", "no jobs left in the feed"))
			return
		}

		recruiter, err := a.recruiters.Get(ctx, job.JobID)
		if err != nil {
			log.Debug("recruiter unavailable", zap.String("job_id", job.JobID.String()), zap.Error(err))
		}
		printJob(out, job, a.counts.Count(job.JobID), recruiterOrNil(recruiter, err))

		_, action, err := feedPrompt.Run()
		if err != nil {
			log.Fatal("exiting", zap.Error(err))
		}

		if err := handleFeedAction(ctx, a, out, st.TalentID(), action); err != nil {
			if errors.Is(err, errExit) {
				return
			}
			log.Fatal("exiting", zap.Error(err))
		}
	}
}

func handleFeedAction(ctx context.Context, a *application, out io.Writer, talentID scoutjar.ID, action string) error {
	swipe := a.config.Feed.Swipe

	switch action {
	case PromptApply:
		a.show(out, swipeCurrent(ctx, a, talentID, swipe, feed.DirectionRight).Notice)
		return nil
	case PromptReject:
		a.show(out, swipeCurrent(ctx, a, talentID, swipe, feed.DirectionLeft).Notice)
		return nil
	case PromptNext:
		if !a.feed.Next() {
			fmt.Fprintln(out, "This is the last job.")
		}
		return nil
	case PromptPrev:
		if !a.feed.Prev() {
			fmt.Fprintln(out, "This is the first job.")
		}
		return nil
	case PromptRefresh:
		logBootstrap(a.logger, a.boot.Run(ctx))
		return nil
	case PromptQuit:
		a.logger.Info("exiting", zap.String("reason", "got quit from prompt"))
		return errExit
	default:
		return fmt.Errorf("invalid action: %s", action)
	}
}

// swipeCurrent replays a menu choice as a fling past the configured
// thresholds. Thresholds that can never be crossed fall back to a direct
// apply or reject.
func swipeCurrent(ctx context.Context, a *application, talentID scoutjar.ID, cfg feed.SwipeConfig, dir feed.Direction) feed.Outcome {
	sign := 1.0
	if dir == feed.DirectionLeft {
		sign = -1.0
	}

	gesture := feed.Gesture{
		DX: sign * math.Max(cfg.DirectionalOffsetThreshold, 1),
		VX: sign * (math.Abs(cfg.VelocityThreshold) + 1),
	}

	if outcome, ok := a.feed.Swipe(ctx, cfg, talentID, gesture); ok {
		return outcome
	}

	job, ok := a.feed.Current()
	if !ok {
		return feed.Outcome{}
	}
	if dir == feed.DirectionLeft {
		return a.feed.Reject(job)
	}
	return a.feed.Apply(ctx, talentID, job)
}

func autoApply(ctx context.Context, a *application, out io.Writer, talentID scoutjar.ID) {
	applied := 0
	for _, job := range a.feed.Jobs() {
		outcome := a.feed.Apply(ctx, talentID, job)
		a.show(out, outcome.Notice)
		if outcome.Removed {
			applied++
		}
	}

	a.logger.Info("auto apply finished", zap.Int("applied", applied), zap.Int("left", a.feed.Len()))
}

func logBootstrap(log *zap.Logger, result bootstrap.Result) {
	if result.Idle {
		log.Info("nobody is signed in")
		return
	}

	fields := []zap.Field{
		zap.String("mode", string(result.Mode)),
		zap.Int("jobs", result.Jobs),
		zap.Int("applied", result.Applied),
		zap.Int("counts", result.Counts),
	}
	if result.JobsErr != nil {
		fields = append(fields, zap.String("jobs_error", scoutjar.UserMessage(result.JobsErr)))
	}
	if result.AppliedErr != nil {
		fields = append(fields, zap.String("applied_error", scoutjar.UserMessage(result.AppliedErr)))
	}
	if result.CountsErr != nil {
		fields = append(fields, zap.String("counts_error", scoutjar.UserMessage(result.CountsErr)))
	}

	log.Info("feed loaded", fields...)
}

func recruiterOrNil(info scoutjar.RecruiterInfo, err error) *scoutjar.RecruiterInfo {
	if err != nil {
		return nil
	}
	return &info
}

func printJob(out io.Writer, job scoutjar.Job, applicants int, recruiter *scoutjar.RecruiterInfo) {
	fmt.Fprintf(out, "\n%s  [%d%% match]\n", job.JobTitle, int(math.Round(job.MatchScore)))
	fmt.Fprintf(out, "  id: %s  applicants: %d\n", job.JobID, applicants)
	if recruiter != nil {
		company := recruiter.Company
		if company == "" {
			company = recruiter.Organization
		}
		fmt.Fprintf(out, "  recruiter: %s", recruiter.FullName)
		if company != "" {
			fmt.Fprintf(out, " (%s)", company)
		}
		fmt.Fprintln(out)
	}
	if len(job.RequiredSkills) > 0 {
		fmt.Fprintf(out, "  skills: %s\n", strings.Join(job.RequiredSkills, ", "))
	}
	if desc := strings.TrimSpace(job.JobDescription); desc != "" {
		fmt.Fprintf(out, "  %s\n", utils.TruncateForLog(desc, descriptionPreview))
	}
}

func printFilters(out io.Writer, steps []filtering.Filter) {
	for _, status := range filtering.Describe(steps) {
		state := "enabled"
		if !status.Enabled {
			state = "disabled"
			if status.Reason != "" {
				state += ": " + status.Reason
			}
		}
		fmt.Fprintf(out, "filter %s (%s)\n", status.Name, state)
	}
}
