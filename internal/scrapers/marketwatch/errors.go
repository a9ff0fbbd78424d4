package marketwatch

import (
	"errors"
	"fmt"
)

var (
	ErrLoginFailed       = errors.New("login failed, check your credentials")
	ErrNotLoggedIn       = errors.New("not logged in")
	ErrSiteDown          = errors.New("marketwatch stock market game down")
	ErrNoGames           = errors.New("no games found")
	ErrGameNotFound      = errors.New("game not found")
	ErrTickerNotFound    = errors.New("ticker not found")
	ErrWatchlistNotFound = errors.New("watchlist not found")
	ErrInvalidOrder      = errors.New("invalid order")
	ErrUnexpectedMarkup  = errors.New("unexpected page markup")
)

// StatusError is returned when an endpoint responds with a status the
// scraper does not expect.
type StatusError struct {
	Url    string
	Status int
}

func (e StatusError) Error() string {
	return fmt.Sprintf("%s: unexpected status %d", e.Url, e.Status)
}

func markupError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrUnexpectedMarkup, fmt.Sprintf(format, args...))
}
