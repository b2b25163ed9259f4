// Package handler exposes the HTTP API of the reservation service.  Every
// failure is answered with {"error", "error_kind", "field"?}; internal
// errors never leak their message.
package handler

import (
    "context"
    "errors"
    "net/http"
    "net/url"
    "strconv"
    "strings"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/airline-reservation/internal/middleware"
    "github.com/iliyamo/airline-reservation/internal/model"
    "github.com/iliyamo/airline-reservation/internal/service"
)

const requestTimeout = 5 * time.Second

var kindStatus = map[string]int{
    service.KindValidation: http.StatusBadRequest,
    service.KindNotFound:   http.StatusNotFound,
    service.KindSoldOut:    http.StatusBadRequest,
    service.KindForbidden:  http.StatusForbidden,
    service.KindConflict:   http.StatusConflict,
    service.KindInternal:   http.StatusInternalServerError,
}

// fail writes the error body for err.
func fail(c echo.Context, err error) error {
    kind := service.Kind(err)
    if errors.Is(err, context.DeadlineExceeded) {
        kind = service.KindInternal
    }
    body := echo.Map{"error_kind": kind}
    if kind == service.KindInternal {
        c.Set(middleware.ErrorKey, err)
        body["error"] = "internal error"
    } else {
        body["error"] = err.Error()
    }
    if f := service.Field(err); f != "" {
        body["field"] = f
        var fe *service.FieldError
        if errors.As(err, &fe) {
            body["error"] = fe.Message
        }
    }
    return c.JSON(kindStatus[kind], body)
}

func unauthorized(c echo.Context, msg string) error {
    return c.JSON(http.StatusUnauthorized, echo.Map{"error": msg, "error_kind": middleware.KindUnauthorized})
}

// badRequest is a validation failure detected by the handler itself.
func badRequest(c echo.Context, field, msg string) error {
    return fail(c, &service.FieldError{Field: field, Message: msg})
}

func timeout(c echo.Context) (context.Context, context.CancelFunc) {
    return context.WithTimeout(c.Request().Context(), requestTimeout)
}

// flightKeyParam reads the :airline/:number/:departure path parameters.
// Echo leaves them escaped, so they are unescaped here.
func flightKeyParam(c echo.Context) (model.FlightKey, error) {
    parts := make([]string, 3)
    for i, name := range []string{"airline", "number", "departure"} {
        v, err := url.PathUnescape(c.Param(name))
        if err != nil {
            return model.FlightKey{}, &service.FieldError{Field: "flight", Message: "malformed " + name}
        }
        parts[i] = v
    }
    key, err := model.ParseFlightKey(parts[0], parts[1], parts[2])
    if err != nil {
        return model.FlightKey{}, &service.FieldError{Field: "flight", Message: err.Error()}
    }
    return key, nil
}

// principal returns the caller set by the JWT middleware; routes using it
// are always mounted behind that middleware.
func principal(c echo.Context) middleware.Principal {
    p, _ := middleware.PrincipalFrom(c)
    return p
}

// dateParam parses an optional YYYY-MM-DD query parameter.
func dateParam(c echo.Context, name string) (time.Time, bool, error) {
    v := strings.TrimSpace(c.QueryParam(name))
    if v == "" {
        return time.Time{}, false, nil
    }
    t, err := time.ParseInLocation("2006-01-02", v, time.UTC)
    if err != nil {
        return time.Time{}, false, &service.FieldError{Field: name, Message: "must be YYYY-MM-DD"}
    }
    return t, true, nil
}

const maxPage = 10000

// pageParams reads page and page_size, clamping page to [1, maxPage] and
// size to [1, maxSize].
func pageParams(c echo.Context, defSize, maxSize int) (page, size int) {
    page, size = 1, defSize
    if v, err := strconv.Atoi(c.QueryParam("page")); err == nil && v > 0 {
        page = min(v, maxPage)
    }
    if v, err := strconv.Atoi(c.QueryParam("page_size")); err == nil && v > 0 {
        size = v
    }
    if size > maxSize {
        size = maxSize
    }
    return page, size
}
