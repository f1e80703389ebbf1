package game

import "fmt"

// GameFrame is either a running Frame or a terminal End.
type GameFrame interface {
	isGameFrame()
}

// Frame is an in-progress game; Field is valid to render.
type Frame struct {
	Field Field
}

// End is the terminal outcome.
type End struct {
	Result Result
}

func (Frame) isGameFrame() {}
func (End) isGameFrame()   {}

// Result is either Win or Lose.
type Result interface {
	isResult()
	fmt.Stringer
}

// Win carries the points scored when reaching the open exit.
type Win struct {
	Points int
}

// Lose carries why the snake died.
type Lose struct {
	Reason LoseReason
}

func (Win) isResult()  {}
func (Lose) isResult() {}

func (w Win) String() string {
	return fmt.Sprintf("It's a WIN! You've got %d points!", w.Points)
}

func (l Lose) String() string {
	return fmt.Sprintf("You've lost. %s", l.Reason)
}

// LoseReason describes the fatal collision.
type LoseReason int

const (
	HitObstacle LoseReason = iota
	HitSelf
	HitWall
)

func (r LoseReason) String() string {
	switch r {
	case HitObstacle:
		return "You crashed into an obstacle."
	case HitSelf:
		return "You bit yourself."
	case HitWall:
		return "You hit the wall."
	default:
		return "Unknown"
	}
}
