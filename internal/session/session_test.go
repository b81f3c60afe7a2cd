package session

import (
	"context"
	"errors"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/scoutjar/scoutjar-talent/internal/scoutjar"
)

const testPath = "/home/ada/.config/scoutjar-talent/session.json"

func newTestSession(t *testing.T) (*Session, *FileStore) {
	t.Helper()
	store := NewFileStore(afero.NewMemMapFs(), testPath)
	return New(store, zap.NewNop()), store
}

func TestFileStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	fs := afero.NewMemMapFs()
	store := NewFileStore(fs, testPath)

	_, ok, err := store.Get(ctx, KeyUser)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Set(ctx, KeyProfileMode, "passive"))

	reopened := NewFileStore(fs, testPath)
	v, ok, err := reopened.Get(ctx, KeyProfileMode)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "passive", v)

	require.NoError(t, reopened.Remove(ctx, KeyProfileMode, KeyUser))
	_, ok, err = reopened.Get(ctx, KeyProfileMode)
	require.NoError(t, err)
	assert.False(t, ok)

	exists, err := afero.Exists(fs, testPath+".tmp")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestFileStoreCorruptFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, testPath, []byte("{not json"), 0o600))

	_, _, err := NewFileStore(fs, testPath).Get(context.Background(), KeyUser)
	assert.Error(t, err)
}

func TestMutatePersistsAndLoadRestores(t *testing.T) {
	ctx := context.Background()
	sess, store := newTestSession(t)

	_, err := sess.Mutate(ctx, func(st *State) error {
		st.User = &scoutjar.User{UserID: "7", Email: "ada@example.com"}
		st.Talent = &scoutjar.Talent{TalentID: "42", UserID: "7", Skills: []string{"Go"}}
		st.ProfileMode = scoutjar.ModePassive
		return nil
	})
	require.NoError(t, err)

	restored, err := New(store, zap.NewNop()).Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, restored.Talent)
	assert.Equal(t, scoutjar.ID("42"), restored.TalentID())
	assert.Equal(t, scoutjar.ID("7"), restored.UserID())
	assert.Equal(t, scoutjar.ModePassive, restored.ProfileMode)
	assert.Equal(t, []string{"Go"}, restored.Talent.Skills)
}

func TestSnapshotIsACopy(t *testing.T) {
	ctx := context.Background()
	sess, _ := newTestSession(t)

	_, err := sess.Mutate(ctx, func(st *State) error {
		st.Talent = &scoutjar.Talent{TalentID: "42", Skills: []string{"Go"}}
		return nil
	})
	require.NoError(t, err)

	snap := sess.Snapshot()
	snap.Talent.Bio = "changed"
	snap.Talent.Skills[0] = "Rust"

	again := sess.Snapshot()
	assert.Empty(t, again.Talent.Bio)
	assert.Equal(t, []string{"Go"}, again.Talent.Skills)
}

type failingStore struct {
	Store
	failSet bool
}

func (f *failingStore) Set(ctx context.Context, key, value string) error {
	if f.failSet {
		return errors.New("disk full")
	}
	return f.Store.Set(ctx, key, value)
}

func TestMutateFailureLeavesStateUnchanged(t *testing.T) {
	ctx := context.Background()
	store := &failingStore{Store: NewFileStore(afero.NewMemMapFs(), testPath)}
	sess := New(store, zap.NewNop())

	_, err := sess.Mutate(ctx, func(st *State) error {
		st.ProfileMode = scoutjar.ModeActive
		return nil
	})
	require.NoError(t, err)

	store.failSet = true
	_, err = sess.Mutate(ctx, func(st *State) error {
		st.ProfileMode = scoutjar.ModePassive
		return nil
	})
	require.Error(t, err)
	assert.Equal(t, scoutjar.ModeActive, sess.Snapshot().ProfileMode)
}

func TestMutateCallbackError(t *testing.T) {
	sess, _ := newTestSession(t)
	boom := errors.New("boom")

	_, err := sess.Mutate(context.Background(), func(st *State) error {
		st.ProfileMode = scoutjar.ModePassive
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, sess.Snapshot().ProfileMode)
}

func TestLoadIgnoresUnparsableEntries(t *testing.T) {
	ctx := context.Background()
	core, logs := observer.New(zapcore.WarnLevel)
	store := NewFileStore(afero.NewMemMapFs(), testPath)

	require.NoError(t, store.Set(ctx, KeyUser, `{"user_id":7}`))
	require.NoError(t, store.Set(ctx, KeyTalent, `not-json`))
	require.NoError(t, store.Set(ctx, KeyProfileMode, "sleepy"))

	st, err := New(store, zap.New(core)).Load(ctx)
	require.NoError(t, err)
	assert.NotNil(t, st.User)
	assert.Nil(t, st.Talent)
	assert.False(t, st.SignedIn())
	assert.Empty(t, st.ProfileMode)
	assert.Equal(t, 2, logs.Len())
}

func TestClearRemovesEveryKey(t *testing.T) {
	ctx := context.Background()
	sess, store := newTestSession(t)

	_, err := sess.Mutate(ctx, func(st *State) error {
		st.User = &scoutjar.User{UserID: "7"}
		st.Talent = &scoutjar.Talent{TalentID: "42"}
		st.ProfileMode = scoutjar.ModeActive
		return nil
	})
	require.NoError(t, err)

	require.NoError(t, sess.Clear(ctx))
	assert.False(t, sess.Snapshot().SignedIn())

	for _, key := range Keys {
		_, ok, err := store.Get(ctx, key)
		require.NoError(t, err)
		assert.False(t, ok, key)
	}
}
