package wizard

import "errors"

var (
	ErrWrongStep       = errors.New("wizard: operation not allowed in current step")
	ErrBlankQuery      = errors.New("wizard: search query is blank")
	ErrLyricsPending   = errors.New("wizard: lyrics not loaded")
	ErrUnknownLine     = errors.New("wizard: line is not part of the lyrics")
	ErrNothingSelected = errors.New("wizard: no lines selected")
)

// User-facing messages stored in State.Err.
const (
	MsgSearchFailed   = "Failed to search for songs. Please try again."
	MsgLyricsNotFound = "Lyrics not found for this song."
	MsgLyricsFailed   = "Could not fetch lyrics. Please try another song."
)

func IsWrongStep(err error) bool { return errors.Is(err, ErrWrongStep) }
