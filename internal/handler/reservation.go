package handler

import (
    "net/http"
    "strconv"
    "strings"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/table-reservation/internal/middleware"
    "github.com/iliyamo/table-reservation/internal/reservation"
)

// ReservationHandler exposes availability, booking, cancellation,
// feedback and nearby search.  All business rules live in the engine;
// the handler only parses input and shapes output.
type ReservationHandler struct {
    Engine *reservation.Engine
}

// NewReservationHandler wires a handler to the engine.
func NewReservationHandler(engine *reservation.Engine) *ReservationHandler {
    if engine == nil {
        panic("nil engine passed to NewReservationHandler")
    }
    return &ReservationHandler{Engine: engine}
}

// CheckAvailability handles GET /v1/restaurants/:id/availability.
// Query: start (required), end (default start + 2h), guests (default 1).
func (h *ReservationHandler) CheckAvailability(c echo.Context) error {
    id, err := pathID(c, "id")
    if err != nil {
        return badRequest(c, "invalid restaurant id")
    }
    start, err := parseTime(c.QueryParam("start"))
    if err != nil || start.IsZero() {
        return badRequest(c, "start must be an ISO-8601 time")
    }
    end, err := parseTime(c.QueryParam("end"))
    if err != nil {
        return badRequest(c, "end must be an ISO-8601 time")
    }
    guests := 1
    if g := c.QueryParam("guests"); g != "" {
        if guests, err = strconv.Atoi(g); err != nil {
            return badRequest(c, "guests must be an integer")
        }
    }
    out, err := h.Engine.CheckAvailability(c.Request().Context(), id, start, end, guests)
    if err != nil {
        return engineError(c, err)
    }
    return ok(c, http.StatusOK, toAvailability(out))
}

type createBookingRequest struct {
    UserID             uint64 `json:"user_id"`
    RestaurantID       uint64 `json:"restaurant_id"`
    Start              string `json:"start"`
    End                string `json:"end"`
    Guests             int    `json:"guests"`
    AllowNonContiguous bool   `json:"allow_non_contiguous"`
}

// CreateBooking handles POST /v1/bookings.  A conflict response carries
// retryable=true so clients know a plain retry may succeed.
func (h *ReservationHandler) CreateBooking(c echo.Context) error {
    var body createBookingRequest
    if err := c.Bind(&body); err != nil {
        return badRequest(c, "invalid request body")
    }
    userID, found := userIDFrom(c, body.UserID)
    if !found {
        return fail(c, http.StatusBadRequest, "missing_params", "user_id is required")
    }
    if body.RestaurantID == 0 {
        return fail(c, http.StatusBadRequest, "missing_params", "restaurant_id is required")
    }
    start, err := parseTime(body.Start)
    if err != nil || start.IsZero() {
        return badRequest(c, "start must be an ISO-8601 time")
    }
    end, err := parseTime(body.End)
    if err != nil {
        return badRequest(c, "end must be an ISO-8601 time")
    }

    res, err := h.Engine.CreateBooking(c.Request().Context(), reservation.BookingRequest{
        UserID:             userID,
        RestaurantID:       body.RestaurantID,
        Start:              start,
        End:                end,
        Guests:             body.Guests,
        AllowNonContiguous: body.AllowNonContiguous,
    })
    if err != nil {
        if reservation.Retryable(err) {
            return c.JSON(http.StatusConflict, echo.Map{
                "success":   false,
                "error":     err.Error(),
                "code":      reservation.KindOf(err),
                "retryable": true,
            })
        }
        return engineError(c, err)
    }
    return ok(c, http.StatusCreated, toBooking(res))
}

// CancelBooking handles DELETE /v1/bookings/:id?user_id=.
func (h *ReservationHandler) CancelBooking(c echo.Context) error {
    bookingID, err := pathID(c, "id")
    if err != nil {
        return badRequest(c, "invalid booking id")
    }
    var fromQuery uint64
    if q := c.QueryParam("user_id"); q != "" {
        if fromQuery, err = strconv.ParseUint(q, 10, 64); err != nil {
            return badRequest(c, "invalid user_id")
        }
    }
    userID, found := userIDFrom(c, fromQuery)
    if !found {
        return fail(c, http.StatusBadRequest, "missing_params", "user_id is required")
    }
    out, err := h.Engine.Cancel(c.Request().Context(), bookingID, userID)
    if err != nil {
        return engineError(c, err)
    }
    return ok(c, http.StatusOK, echo.Map{
        "booking_id":                bookingID,
        "cancelled_reservation_ids": out.ReservationIDs,
    })
}

type feedbackRequest struct {
    UserID uint64 `json:"user_id"`
    Stars  int    `json:"stars"`
    Text   string `json:"text"`
}

// SubmitFeedback handles POST /v1/bookings/:id/feedback.  It answers 201
// when feedback is created and 200 when an earlier one is replaced.
func (h *ReservationHandler) SubmitFeedback(c echo.Context) error {
    bookingID, err := pathID(c, "id")
    if err != nil {
        return badRequest(c, "invalid booking id")
    }
    var body feedbackRequest
    if err := c.Bind(&body); err != nil {
        return badRequest(c, "invalid request body")
    }
    userID, found := userIDFrom(c, body.UserID)
    if !found {
        return fail(c, http.StatusBadRequest, "missing_params", "user_id is required")
    }
    out, err := h.Engine.SubmitFeedback(c.Request().Context(), reservation.FeedbackRequest{
        BookingID: bookingID,
        UserID:    userID,
        Stars:     body.Stars,
        Text:      strings.TrimSpace(body.Text),
    })
    if err != nil {
        return engineError(c, err)
    }
    status := http.StatusCreated
    if out.Updated {
        status = http.StatusOK
    }
    return ok(c, status, echo.Map{"updated": out.Updated, "feedback": toFeedback(out.Feedback)})
}

// Nearby handles GET /v1/restaurants/nearby?area=&restaurant_id=&radius_km=.
func (h *ReservationHandler) Nearby(c echo.Context) error {
    var req reservation.NearbyRequest
    req.Area = c.QueryParam("area")
    if v := c.QueryParam("restaurant_id"); v != "" {
        id, err := strconv.ParseUint(v, 10, 64)
        if err != nil {
            return badRequest(c, "invalid restaurant_id")
        }
        req.RestaurantID = id
    }
    if v := c.QueryParam("radius_km"); v != "" {
        r, err := strconv.ParseFloat(v, 64)
        if err != nil || r <= 0 {
            return badRequest(c, "radius_km must be a positive number")
        }
        req.RadiusKm = r
    }
    out, err := h.Engine.Nearby(c.Request().Context(), req)
    if err != nil {
        return engineError(c, err)
    }
    rows := make([]nearbyDTO, len(out.Restaurants))
    for i, n := range out.Restaurants {
        rows[i] = nearbyDTO{restaurantDTO: toRestaurant(n.Restaurant), DistanceKm: round2(n.DistanceKm)}
    }
    return ok(c, http.StatusOK, echo.Map{
        "base":        toPoint(out.Base),
        "radius_km":   out.RadiusKm,
        "restaurants": rows,
    })
}

func pathID(c echo.Context, name string) (uint64, error) {
    id, err := strconv.ParseUint(c.Param(name), 10, 64)
    if err != nil || id == 0 {
        return 0, echo.ErrBadRequest
    }
    return id, nil
}

// userIDFrom prefers an explicit id and falls back to X-User-ID.
func userIDFrom(c echo.Context, explicit uint64) (uint64, bool) {
    if explicit > 0 {
        return explicit, true
    }
    return middleware.UserID(c)
}
