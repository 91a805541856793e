package conversation

import "errors"

var (
	// ErrEmptyGoal indicates Start was called without a goal. No
	// gateway call is made.
	ErrEmptyGoal = errors.New("goal cannot be empty")

	// ErrEmptyAnswer indicates Advance was called without an answer.
	// No gateway call is made.
	ErrEmptyAnswer = errors.New("answer cannot be empty")

	// ErrFinalized indicates a turn was submitted to a conversation
	// that already produced its final result.
	ErrFinalized = errors.New("conversation already finalized")
)
