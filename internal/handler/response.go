package handler

import (
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/table-reservation/internal/middleware"
    "github.com/iliyamo/table-reservation/internal/reservation"
)

// Every response uses the same envelope:
//
//  {"success": true,  "data": ...}
//  {"success": false, "error": "...", "code": "..."}

func ok(c echo.Context, status int, data any) error {
    return c.JSON(status, echo.Map{"success": true, "data": data})
}

func fail(c echo.Context, status int, code, msg string) error {
    return c.JSON(status, echo.Map{"success": false, "error": msg, "code": code})
}

func badRequest(c echo.Context, msg string) error {
    return fail(c, http.StatusBadRequest, "invalid_request", msg)
}

// engineError maps an engine error onto its HTTP status.  Internal
// failures are handed to the request logger and reported without
// detail.
func engineError(c echo.Context, err error) error {
    kind := reservation.KindOf(err)
    status := statusFor(kind)
    if status == http.StatusInternalServerError {
        middleware.SetError(c, err)
        return fail(c, status, kind, "internal error")
    }
    return fail(c, status, kind, err.Error())
}

func statusFor(kind string) int {
    switch kind {
    case "not_found", "no_match":
        return http.StatusNotFound
    case "unauthorized":
        return http.StatusForbidden
    case "invalid_window", "invalid_guests", "invalid_rating", "missing_params":
        return http.StatusBadRequest
    case "not_enough_capacity", "no_contiguous_block", "conflict":
        return http.StatusConflict
    }
    return http.StatusInternalServerError
}
