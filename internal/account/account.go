// Package account implements the user-initiated flows that change the
// session or the talent's server-side records.
package account

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/scoutjar/scoutjar-talent/internal/logger"
	"github.com/scoutjar/scoutjar-talent/internal/scoutjar"
	"github.com/scoutjar/scoutjar-talent/internal/session"
)

var (
	ErrNotSignedIn        = errors.New("not signed in")
	ErrMissingCredentials = errors.New("email and password are required")
	ErrNoTalentProfile    = errors.New("account has no talent profile")
	ErrInvalidMode        = errors.New("profile mode must be active or passive")
)

// CoreAPI is the part of *scoutjar.Core used by the account flows.
type CoreAPI interface {
	Login(ctx context.Context, email, password string) (*scoutjar.LoginResult, error)
	UpdateProfile(ctx context.Context, update scoutjar.ProfileUpdate) (*scoutjar.Talent, error)
	UpdateProfileMode(ctx context.Context, talentID scoutjar.ID, mode scoutjar.ProfileMode) error
}

// MatchingAPI is the part of *scoutjar.Matching used by the account flows.
type MatchingAPI interface {
	PassivePreferences(ctx context.Context, talentID scoutjar.ID) (*scoutjar.PassivePreferences, error)
	SavePassivePreferences(ctx context.Context, prefs scoutjar.PassivePreferences) error
	UploadResume(ctx context.Context, talentID scoutjar.ID, filename string, file io.Reader) error
}

type Service struct {
	core     CoreAPI
	matching MatchingAPI
	session  *session.Session
	fs       afero.Fs
	validate *validator.Validate
	logger   *zap.Logger
}

func New(core CoreAPI, matching MatchingAPI, sess *session.Session, fs afero.Fs, log *zap.Logger) *Service {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &Service{
		core:     core,
		matching: matching,
		session:  sess,
		fs:       fs,
		validate: validator.New(),
		logger:   logger.WithFields(log),
	}
}

// signedIn returns the current state or ErrNotSignedIn.
func (s *Service) signedIn() (session.State, error) {
	st := s.session.Snapshot()
	if !st.SignedIn() {
		return st, ErrNotSignedIn
	}
	return st, nil
}

// validationMessage extracts the first validation error in a readable form.
func validationMessage(err error) string {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) && len(validationErrors) > 0 {
		ve := validationErrors[0]
		if ve.Param() != "" {
			return fmt.Sprintf("%s must satisfy %s=%s", ve.Field(), ve.Tag(), ve.Param())
		}
		return fmt.Sprintf("%s is %s", ve.Field(), ve.Tag())
	}
	return err.Error()
}
