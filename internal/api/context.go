package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/hyperengineering/loopz/internal/types"
)

// dateContextKey is the context key for the parsed {date} path segment.
type dateContextKey struct{}

// yearContextKey is the context key for the parsed {year} path segment.
type yearContextKey struct{}

// ErrNoDateInContext indicates no date was found in the context.
var ErrNoDateInContext = errors.New("no date in context")

// WithDate returns a new context with the date attached.
func WithDate(ctx context.Context, d types.Date) context.Context {
	return context.WithValue(ctx, dateContextKey{}, d)
}

// DateFromContext extracts the date from the context.
func DateFromContext(ctx context.Context) (types.Date, error) {
	d, ok := ctx.Value(dateContextKey{}).(types.Date)
	if !ok || d.IsZero() {
		return types.Date{}, ErrNoDateInContext
	}
	return d, nil
}

// MustDateFromContext extracts the date or panics.
// Use only when DateParam guarantees presence.
func MustDateFromContext(ctx context.Context) types.Date {
	d, err := DateFromContext(ctx)
	if err != nil {
		panic("date not in context: middleware misconfiguration")
	}
	return d
}

// DateParam parses the {date} URL parameter (YYYY-MM-DD) into the request
// context. Malformed dates get a 400.
func DateParam(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		d, err := types.ParseDate(chi.URLParam(r, "date"))
		if err != nil {
			WriteProblem(w, r, http.StatusBadRequest, err.Error())
			return
		}
		next.ServeHTTP(w, r.WithContext(WithDate(r.Context(), d)))
	})
}

// YearParam parses the {year} URL parameter into the request context.
func YearParam(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		year, err := strconv.Atoi(chi.URLParam(r, "year"))
		if err != nil || year < 1 || year > 9999 {
			WriteProblem(w, r, http.StatusBadRequest, "Year must be a number between 1 and 9999")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), yearContextKey{}, year)))
	})
}

// YearFromContext returns the year set by YearParam, or 0.
func YearFromContext(ctx context.Context) int {
	year, _ := ctx.Value(yearContextKey{}).(int)
	return year
}
