package account

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/scoutjar/scoutjar-talent/internal/notice"
	"github.com/scoutjar/scoutjar-talent/internal/scoutjar"
	"github.com/scoutjar/scoutjar-talent/internal/session"
)

type fakeCore struct {
	loginResult *scoutjar.LoginResult
	loginErr    error
	updated     *scoutjar.ProfileUpdate
	updateErr   error
	modes       []scoutjar.ProfileMode
	modeErr     error
}

func (c *fakeCore) Login(context.Context, string, string) (*scoutjar.LoginResult, error) {
	return c.loginResult, c.loginErr
}

func (c *fakeCore) UpdateProfile(_ context.Context, update scoutjar.ProfileUpdate) (*scoutjar.Talent, error) {
	if c.updateErr != nil {
		return nil, c.updateErr
	}
	c.updated = &update
	return &scoutjar.Talent{TalentID: update.TalentID, Bio: update.Bio, Skills: update.Skills}, nil
}

func (c *fakeCore) UpdateProfileMode(_ context.Context, _ scoutjar.ID, mode scoutjar.ProfileMode) error {
	c.modes = append(c.modes, mode)
	return c.modeErr
}

type fakeMatching struct {
	prefs    *scoutjar.PassivePreferences
	saved    *scoutjar.PassivePreferences
	saveErr  error
	uploaded string
	filename string
}

func (m *fakeMatching) PassivePreferences(_ context.Context, talentID scoutjar.ID) (*scoutjar.PassivePreferences, error) {
	if m.prefs == nil {
		return scoutjar.DefaultPreferences(talentID), nil
	}
	return m.prefs, nil
}

func (m *fakeMatching) SavePassivePreferences(_ context.Context, prefs scoutjar.PassivePreferences) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saved = &prefs
	return nil
}

func (m *fakeMatching) UploadResume(_ context.Context, _ scoutjar.ID, filename string, file io.Reader) error {
	data, err := io.ReadAll(file)
	if err != nil {
		return err
	}
	m.filename = filename
	m.uploaded = string(data)
	return nil
}

type fixture struct {
	core     *fakeCore
	matching *fakeMatching
	store    *session.FileStore
	session  *session.Session
	fs       afero.Fs
	svc      *Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		core:     &fakeCore{},
		matching: &fakeMatching{},
		fs:       afero.NewMemMapFs(),
	}
	f.store = session.NewFileStore(f.fs, "/session.json")
	f.session = session.New(f.store, zap.NewNop())
	f.svc = New(f.core, f.matching, f.session, f.fs, zap.NewNop())
	return f
}

func (f *fixture) signIn(t *testing.T) {
	t.Helper()
	f.core.loginResult = &scoutjar.LoginResult{
		User:   &scoutjar.User{UserID: "7", FullName: "Ada Lovelace"},
		Talent: &scoutjar.Talent{TalentID: "42", UserID: "7", ProfileMode: scoutjar.ModeActive},
	}
	n, err := f.svc.Login(context.Background(), "ada@example.com", "secret")
	require.NoError(t, err)
	require.Equal(t, notice.TitleLoggedIn, n.Title)
}

func (f *fixture) stored(t *testing.T, key string) (string, bool) {
	t.Helper()
	v, ok, err := f.store.Get(context.Background(), key)
	require.NoError(t, err)
	return v, ok
}

func TestLoginStoresSession(t *testing.T) {
	f := newFixture(t)
	f.signIn(t)

	st := f.session.Snapshot()
	assert.Equal(t, scoutjar.ID("42"), st.TalentID())
	assert.Equal(t, scoutjar.ModeActive, st.ProfileMode)

	mode, ok := f.stored(t, session.KeyProfileMode)
	assert.True(t, ok)
	assert.Equal(t, "active", mode)
	_, ok = f.stored(t, session.KeyTalent)
	assert.True(t, ok)
}

func TestLoginFailureLeavesStoreUntouched(t *testing.T) {
	f := newFixture(t)
	f.core.loginErr = &scoutjar.APIError{Service: scoutjar.ServiceCore, StatusCode: 401, Message: "Login failed"}

	n, err := f.svc.Login(context.Background(), "a@b.com", "x")

	require.Error(t, err)
	assert.Equal(t, notice.Notice{Title: "Login Failed", Message: "Login failed"}, n)
	for _, key := range session.Keys {
		_, ok := f.stored(t, key)
		assert.False(t, ok, key)
	}
	exists, err := afero.Exists(f.fs, "/session.json")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestLoginFailureWithoutServerTextSaysLoginFailed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, "unauthorized")
	}))
	t.Cleanup(srv.Close)

	f := newFixture(t)
	f.svc = New(scoutjar.NewCore(zap.NewNop(), srv.URL), f.matching, f.session, f.fs, zap.NewNop())

	n, err := f.svc.Login(context.Background(), "ada@example.com", "secret")

	require.Error(t, err)
	assert.Equal(t, notice.Notice{Title: notice.TitleLoginFailed, Message: notice.MessageLoginFailed}, n)
	_, ok := f.stored(t, session.KeyTalent)
	assert.False(t, ok)
}

func TestLoginValidation(t *testing.T) {
	f := newFixture(t)

	n, err := f.svc.Login(context.Background(), "", "")
	assert.ErrorIs(t, err, ErrMissingCredentials)
	assert.Equal(t, notice.MessageMissingCredentials, n.Message)

	n, err = f.svc.Login(context.Background(), "not-an-email", "secret")
	assert.Error(t, err)
	assert.Equal(t, notice.TitleLoginFailed, n.Title)
}

func TestLoginWithoutTalent(t *testing.T) {
	f := newFixture(t)
	f.core.loginResult = &scoutjar.LoginResult{User: &scoutjar.User{UserID: "7"}}

	_, err := f.svc.Login(context.Background(), "ada@example.com", "secret")
	assert.ErrorIs(t, err, ErrNoTalentProfile)
	assert.False(t, f.session.Snapshot().SignedIn())
}

func TestSignOut(t *testing.T) {
	f := newFixture(t)
	f.signIn(t)

	n := f.svc.SignOut(context.Background())
	assert.Equal(t, notice.TitleSignedOut, n.Title)
	assert.False(t, f.session.Snapshot().SignedIn())
	_, ok := f.stored(t, session.KeyTalent)
	assert.False(t, ok)
}

func TestSaveProfileReplacesTalent(t *testing.T) {
	f := newFixture(t)
	f.signIn(t)

	update := scoutjar.ProfileUpdate{
		Bio:        "Backend engineer",
		Skills:     ParseSkills(" Go, SQL, go ,, Café "),
		Experience: "Senior",
	}
	n, err := f.svc.SaveProfile(context.Background(), update)
	require.NoError(t, err)
	assert.Equal(t, notice.TitleSaved, n.Title)

	require.NotNil(t, f.core.updated)
	assert.Equal(t, scoutjar.ID("42"), f.core.updated.TalentID)
	assert.Equal(t, []string{"Go", "SQL", "Café"}, f.core.updated.Skills)

	talent := f.session.Snapshot().Talent
	assert.Equal(t, "Backend engineer", talent.Bio)
	assert.Equal(t, scoutjar.ModeActive, talent.ProfileMode)
	assert.Equal(t, scoutjar.ID("7"), talent.UserID)
}

func TestSaveProfileValidation(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.SaveProfile(context.Background(), scoutjar.ProfileUpdate{})
	assert.ErrorIs(t, err, ErrNotSignedIn)

	f.signIn(t)
	_, err = f.svc.SaveProfile(context.Background(), scoutjar.ProfileUpdate{Experience: "Wizard"})
	assert.Error(t, err)
	assert.Nil(t, f.core.updated)
}

func TestSetModePassive(t *testing.T) {
	f := newFixture(t)
	f.signIn(t)

	n, err := f.svc.SetMode(context.Background(), scoutjar.ModePassive)
	require.NoError(t, err)
	assert.Equal(t, notice.TitleSaved, n.Title)
	assert.Equal(t, []scoutjar.ProfileMode{scoutjar.ModePassive}, f.core.modes)

	mode, _ := f.stored(t, session.KeyProfileMode)
	assert.Equal(t, "passive", mode)
	assert.Equal(t, scoutjar.ModePassive, f.session.Snapshot().Talent.ProfileMode)
}

func TestSetModeServerFailure(t *testing.T) {
	f := newFixture(t)
	f.signIn(t)
	f.core.modeErr = &scoutjar.APIError{StatusCode: 500, Message: "db down"}

	n, err := f.svc.SetMode(context.Background(), scoutjar.ModePassive)
	require.Error(t, err)
	assert.Equal(t, notice.Notice{Title: "Failed to update profile mode", Message: "db down"}, n)

	mode, _ := f.stored(t, session.KeyProfileMode)
	assert.Equal(t, "passive", mode, "mode key is written before the server call")
	assert.Equal(t, scoutjar.ModeActive, f.session.Snapshot().Talent.ProfileMode)
}

func TestSetModeRejectsUnknown(t *testing.T) {
	f := newFixture(t)
	f.signIn(t)

	_, err := f.svc.SetMode(context.Background(), "sleepy")
	assert.ErrorIs(t, err, ErrInvalidMode)
	assert.Empty(t, f.core.modes)
}

func TestSavePreferences(t *testing.T) {
	f := newFixture(t)
	f.signIn(t)

	prefs, err := f.svc.Preferences(context.Background())
	require.NoError(t, err)
	assert.Equal(t, scoutjar.DefaultMatchThreshold, prefs.MatchThreshold)

	prefs.SalaryMin = 50000
	prefs.SalaryMax = 90000
	prefs.DreamCompanies = []string{" Acme ", "", "acme"}

	n, err := f.svc.SavePreferences(context.Background(), *prefs)
	require.NoError(t, err)
	assert.Equal(t, "Passive preferences updated.", n.Message)
	assert.Equal(t, []string{"Acme"}, f.matching.saved.DreamCompanies)
	assert.Equal(t, scoutjar.ID("42"), f.matching.saved.TalentID)
}

func TestSavePreferencesValidation(t *testing.T) {
	f := newFixture(t)
	f.signIn(t)

	_, err := f.svc.SavePreferences(context.Background(), scoutjar.PassivePreferences{MatchThreshold: 101})
	assert.Error(t, err)

	_, err = f.svc.SavePreferences(context.Background(), scoutjar.PassivePreferences{SalaryMin: 90000, SalaryMax: 50000, MatchThreshold: 80})
	assert.ErrorIs(t, err, ErrSalaryRange)
	assert.Nil(t, f.matching.saved)

	f.matching.saveErr = errors.New("matching down")
	n, err := f.svc.SavePreferences(context.Background(), scoutjar.PassivePreferences{MatchThreshold: 80})
	assert.Error(t, err)
	assert.True(t, n.IsFailure())
}

func TestUploadResume(t *testing.T) {
	f := newFixture(t)
	f.signIn(t)
	require.NoError(t, afero.WriteFile(f.fs, "/docs/cv.pdf", []byte("%PDF-1.7"), 0o644))

	n, err := f.svc.UploadResume(context.Background(), "/docs/cv.pdf")
	require.NoError(t, err)
	assert.Equal(t, notice.TitleSaved, n.Title)
	assert.Equal(t, "cv.pdf", f.matching.filename)
	assert.Equal(t, "%PDF-1.7", f.matching.uploaded)

	_, err = f.svc.UploadResume(context.Background(), "/docs/cv.exe")
	assert.Error(t, err)

	_, err = f.svc.UploadResume(context.Background(), "/docs/missing.pdf")
	assert.Error(t, err)
}
