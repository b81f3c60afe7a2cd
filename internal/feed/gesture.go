package feed

import (
	"context"
	"math"

	"github.com/scoutjar/scoutjar-talent/internal/scoutjar"
)

type Direction int

const (
	DirectionNone Direction = iota
	DirectionLeft
	DirectionRight
)

func (d Direction) String() string {
	switch d {
	case DirectionLeft:
		return "left"
	case DirectionRight:
		return "right"
	default:
		return "none"
	}
}

// Gesture is a finished horizontal swipe: total offsets in points and the
// horizontal release velocity.
type Gesture struct {
	DX float64
	DY float64
	VX float64
}

type SwipeConfig struct {
	VelocityThreshold          float64 `mapstructure:"velocity-threshold"`
	DirectionalOffsetThreshold float64 `mapstructure:"directional-offset-threshold"`
}

func DefaultSwipeConfig() SwipeConfig {
	return SwipeConfig{
		VelocityThreshold:          0.3,
		DirectionalOffsetThreshold: 80,
	}
}

// Classify returns the direction of g, or DirectionNone when it is too slow
// or drifts too far vertically.
func (c SwipeConfig) Classify(g Gesture) Direction {
	if math.Abs(g.VX) <= c.VelocityThreshold || math.Abs(g.DY) >= c.DirectionalOffsetThreshold {
		return DirectionNone
	}

	switch {
	case g.DX < 0:
		return DirectionLeft
	case g.DX > 0:
		return DirectionRight
	default:
		return DirectionNone
	}
}

// Swipe maps g onto the current job: left rejects and right applies. It
// returns false when the gesture is ignored or the feed is empty.
func (f *Feed) Swipe(ctx context.Context, cfg SwipeConfig, talentID scoutjar.ID, g Gesture) (Outcome, bool) {
	dir := cfg.Classify(g)
	if dir == DirectionNone {
		return Outcome{}, false
	}

	job, ok := f.Current()
	if !ok {
		return Outcome{}, false
	}

	if dir == DirectionLeft {
		return f.Reject(job), true
	}
	return f.Apply(ctx, talentID, job), true
}
