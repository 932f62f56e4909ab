package provider

import "errors"

var (
	ErrSearch        = errors.New("provider: search failed")
	ErrLyrics        = errors.New("provider: lyrics fetch failed")
	ErrInvalidConfig = errors.New("provider: invalid config")
)

func IsSearch(err error) bool        { return errors.Is(err, ErrSearch) }
func IsLyrics(err error) bool        { return errors.Is(err, ErrLyrics) }
func IsInvalidConfig(err error) bool { return errors.Is(err, ErrInvalidConfig) }
