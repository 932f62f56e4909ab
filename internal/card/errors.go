package card

import "errors"

var (
	ErrRender           = errors.New("card: render failed")
	ErrInvalidOption    = errors.New("card: invalid option")
	ErrShareUnavailable = errors.New("card: share unavailable")
)

func IsRender(err error) bool { return errors.Is(err, ErrRender) }
