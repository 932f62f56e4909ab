package wizard

import (
	"context"

	"github.com/lyricard/lyricard/internal/lrc"
	"github.com/lyricard/lyricard/internal/provider"
)

// Op is a pending gateway call. It is safe to run on any goroutine.
type Op func(ctx context.Context) Outcome

// Outcome is the result of an Op.
type Outcome interface {
	generation() uint64
}

type SearchOutcome struct {
	Gen    uint64
	Tracks []provider.Track
	Err    error
}

func (o SearchOutcome) generation() uint64 { return o.Gen }

type LyricsOutcome struct {
	Gen   uint64
	Lines []lrc.Line
	Err   error
}

func (o LyricsOutcome) generation() uint64 { return o.Gen }
