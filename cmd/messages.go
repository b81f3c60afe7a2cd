package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/scoutjar/scoutjar-talent/internal/assistant"
	"github.com/scoutjar/scoutjar-talent/internal/messaging"
	"github.com/scoutjar/scoutjar-talent/internal/notice"
	"github.com/scoutjar/scoutjar-talent/internal/scoutjar"
	"github.com/scoutjar/scoutjar-talent/internal/secrets"
	"github.com/scoutjar/scoutjar-talent/internal/session"
)

const quitCommand = "/quit"

var messagesCmd = &cobra.Command{
	Use:   "messages <recruiter-user-id>",
	Short: "Chat with a recruiter",
	Long: "Opens the conversation with a recruiter, refreshing it in the background. " +
		"Type a message and press ENTER to send it; an empty line or " + quitCommand + " leaves.",
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		messages(cmd, scoutjar.ID(args[0]))
	},
}

func init() {
	rootCmd.AddCommand(messagesCmd)

	messagesCmd.Flags().String("draft", "", "prefill the first message with an AI draft about this job id")
}

func messages(cmd *cobra.Command, peer scoutjar.ID) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a := newApplication(ctx)
	defer a.Close()

	out := cmd.OutOrStdout()
	st := a.requireSession(ctx, out)

	self := st.UserID()
	if self.IsZero() {
		a.exitWith(out, notice.Notice{Title: notice.TitleError, Message: notice.MessageNotSignedIn})
	}

	poller := messaging.New(a.core, a.config.Messages.PollInterval, a.logger)
	printer := &threadPrinter{out: out, self: self, seen: make(map[scoutjar.ID]bool)}
	poller.OnUpdate = printer.print

	poller.Start(ctx, messaging.Thread{Self: self, Peer: peer})
	defer poller.Stop()

	draft := ""
	if jobID, _ := cmd.Flags().GetString("draft"); jobID != "" {
		draft = draftMessage(ctx, a, st, scoutjar.ID(jobID))
	}

	for {
		prompt := promptui.Prompt{
			Label:     "Message",
			Default:   draft,
			AllowEdit: draft != "",
		}
		draft = ""

		content, err := prompt.Run()
		if err != nil {
			if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
				return
			}
			a.logger.Fatal("reading message", zap.Error(err))
		}

		content = strings.TrimSpace(content)
		if content == "" || content == quitCommand {
			return
		}

		if _, err := poller.Send(ctx, content); err != nil {
			a.show(out, notice.Notice{Title: notice.TitleError, Message: scoutjar.UserMessage(err)})
		}
	}
}

// draftMessage asks the assistant for an opening message. Any failure just
// leaves the prompt empty.
func draftMessage(ctx context.Context, a *application, st session.State, jobID scoutjar.ID) string {
	log := a.logger.With(zap.String("job_id", jobID.String()))

	if !a.config.AI.Enabled {
		log.Info("skipping draft", zap.String("reason", "ai is disabled in config"))
		return ""
	}

	drafter, err := newDrafter(ctx, a.config.AI, a.logger)
	if err != nil {
		log.Warn("skipping draft", zap.Error(err))
		return ""
	}

	job := findJob(ctx, a, st.TalentID(), jobID)

	var recruiter *scoutjar.RecruiterInfo
	if info, err := a.recruiters.Get(ctx, jobID); err == nil {
		recruiter = &info
	} else {
		log.Debug("recruiter unavailable", zap.Error(err))
	}

	text, err := drafter.Draft(ctx, st.Talent, job, recruiter)
	if err != nil {
		log.Warn("drafting message failed", zap.Error(err))
		return ""
	}
	return text
}

func newDrafter(ctx context.Context, cfg *AIConfig, log *zap.Logger) (*assistant.Drafter, error) {
	apiKey, err := secrets.Load(secrets.Source{
		Name: "gemini api key",
		File: cfg.Gemini.APIKeyFile,
		Env:  "GEMINI_API_KEY",
	})
	if err != nil {
		return nil, fmt.Errorf("%w (set ai.gemini.api-key-file or GEMINI_API_KEY_FILE)", err)
	}

	generator, err := assistant.NewGenerator(ctx, apiKey, cfg.Gemini.Model, cfg.Gemini.MaxRetries)
	if err != nil {
		return nil, err
	}

	drafterLogger := log.With(
		zap.String("provider", "gemini"),
		zap.String("model", generator.Model()),
		zap.Int("ai_retry_attempts", cfg.Gemini.MaxRetries),
	)

	return assistant.NewDrafter(generator, drafterLogger, cfg.Gemini.MaxLogLength), nil
}

// findJob looks the job up in the applied list and then the match feed.
func findJob(ctx context.Context, a *application, talentID, jobID scoutjar.ID) scoutjar.Job {
	if applied, err := a.core.AppliedJobs(ctx, talentID); err == nil {
		for _, job := range applied {
			if job.JobID == jobID {
				return job
			}
		}
	}

	a.boot.Run(ctx)
	for _, job := range a.feed.Jobs() {
		if job.JobID == jobID {
			return job
		}
	}

	return scoutjar.Job{JobID: jobID}
}

// threadPrinter writes messages the terminal has not shown yet.
type threadPrinter struct {
	out  io.Writer
	self scoutjar.ID

	mu   sync.Mutex
	seen map[scoutjar.ID]bool
}

func (p *threadPrinter) print(thread []scoutjar.Message) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, msg := range thread {
		if p.seen[msg.MessageID] {
			continue
		}
		p.seen[msg.MessageID] = true

		who := "recruiter"
		if msg.SenderID == p.self {
			who = "you"
		}
		fmt.Fprintf(p.out, "[%s] %s: %s\n", msg.SentAt.Local().Format("2006-01-02 15:04"), who, msg.Content)
	}
}
