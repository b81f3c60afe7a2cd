package feed

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/scoutjar/scoutjar-talent/internal/notice"
	"github.com/scoutjar/scoutjar-talent/internal/scoutjar"
)

func TestClassify(t *testing.T) {
	cfg := DefaultSwipeConfig()

	tests := []struct {
		name string
		g    Gesture
		want Direction
	}{
		{name: "fast left", g: Gesture{DX: -120, DY: 10, VX: -0.8}, want: DirectionLeft},
		{name: "fast right", g: Gesture{DX: 150, DY: -20, VX: 1.2}, want: DirectionRight},
		{name: "too slow", g: Gesture{DX: 200, DY: 0, VX: 0.3}, want: DirectionNone},
		{name: "too vertical", g: Gesture{DX: -200, DY: 80, VX: -2}, want: DirectionNone},
		{name: "no horizontal offset", g: Gesture{DX: 0, DY: 0, VX: 1}, want: DirectionNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cfg.Classify(tt.g))
		})
	}
}

func TestSwipeMapsOntoCurrentJob(t *testing.T) {
	applier := &fakeApplier{}
	f := New(applier, zap.NewNop())
	f.Load(jobs("1", "2", "3"))
	cfg := DefaultSwipeConfig()
	ctx := context.Background()

	_, handled := f.Swipe(ctx, cfg, "7", Gesture{DX: 30, VX: 0.1})
	assert.False(t, handled)
	assert.Len(t, f.Jobs(), 3)

	out, handled := f.Swipe(ctx, cfg, "7", Gesture{DX: -120, VX: -1})
	require.True(t, handled)
	assert.Equal(t, notice.TitleRejected, out.Notice.Title)
	assert.Equal(t, scoutjar.ID("1"), out.Job.JobID)
	assert.Empty(t, applier.calls)

	out, handled = f.Swipe(ctx, cfg, "7", Gesture{DX: 120, VX: 1})
	require.True(t, handled)
	assert.Equal(t, notice.TitleApplied, out.Notice.Title)
	assert.Equal(t, []scoutjar.ID{"2"}, applier.calls)
	assert.Equal(t, []scoutjar.ID{"3"}, jobIDs(f))
}

func TestSwipeOnEmptyFeed(t *testing.T) {
	f := New(&fakeApplier{}, zap.NewNop())
	_, handled := f.Swipe(context.Background(), DefaultSwipeConfig(), "7", Gesture{DX: 120, VX: 1})
	assert.False(t, handled)
}
