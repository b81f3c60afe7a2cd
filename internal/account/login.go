package account

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/scoutjar/scoutjar-talent/internal/notice"
	"github.com/scoutjar/scoutjar-talent/internal/scoutjar"
	"github.com/scoutjar/scoutjar-talent/internal/session"
)

type credentials struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
}

// Login authenticates and stores the user, talent and profile mode. On any
// failure the session is left untouched.
func (s *Service) Login(ctx context.Context, email, password string) (notice.Notice, error) {
	creds := credentials{Email: strings.TrimSpace(email), Password: password}
	if creds.Email == "" || creds.Password == "" {
		return notice.Notice{Title: notice.TitleError, Message: notice.MessageMissingCredentials}, ErrMissingCredentials
	}
	if err := s.validate.Struct(creds); err != nil {
		return notice.Notice{Title: notice.TitleLoginFailed, Message: validationMessage(err)}, err
	}

	result, err := s.core.Login(ctx, creds.Email, creds.Password)
	if err != nil {
		s.logger.Info("login failed", zap.Int("status", scoutjar.StatusCode(err)), zap.Error(err))
		return notice.Notice{Title: notice.TitleLoginFailed, Message: scoutjar.UserMessageOr(err, notice.MessageLoginFailed)}, err
	}

	if result.Talent == nil || result.Talent.TalentID.IsZero() {
		return notice.Notice{Title: notice.TitleLoginFailed, Message: "This account has no talent profile"}, ErrNoTalentProfile
	}

	mode, ok := scoutjar.ParseProfileMode(string(result.Talent.ProfileMode))
	if !ok {
		mode = scoutjar.ModeActive
	}

	_, err = s.session.Mutate(ctx, func(st *session.State) error {
		st.User = result.User
		st.Talent = result.Talent
		st.ProfileMode = mode
		return nil
	})
	if err != nil {
		s.logger.Warn("storing session failed", zap.Error(err))
		return notice.Notice{Title: notice.TitleLoginFailed, Message: err.Error()}, err
	}

	name := creds.Email
	if result.User != nil && strings.TrimSpace(result.User.FullName) != "" {
		name = result.User.FullName
	}

	return notice.New(notice.TitleLoggedIn, "Welcome, %s", name), nil
}

// SignOut clears the session. It never fails the caller; a storage error is
// reported as a notice asking to retry.
func (s *Service) SignOut(ctx context.Context) notice.Notice {
	if err := s.session.Clear(ctx); err != nil {
		s.logger.Warn("sign out failed", zap.Error(err))
		return notice.Notice{Title: notice.TitleError, Message: notice.MessageSignOutFailed}
	}
	return notice.Notice{Title: notice.TitleSignedOut, Message: "You have been signed out"}
}
