package handler

import (
    "context"
    "encoding/json"
    "net/http"
    "net/http/httptest"
    "net/url"
    "strings"
    "testing"

    "github.com/labstack/echo/v4"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/iliyamo/table-reservation/internal/middleware"
    "github.com/iliyamo/table-reservation/internal/model"
    "github.com/iliyamo/table-reservation/internal/repository"
    "github.com/iliyamo/table-reservation/internal/reservation"
)

type envelope struct {
    Success   bool            `json:"success"`
    Data      json.RawMessage `json:"data"`
    Error     string          `json:"error"`
    Code      string          `json:"code"`
    Retryable bool            `json:"retryable"`
}

type testServer struct {
    e          *echo.Echo
    restaurant model.Restaurant
    user       model.User
}

func newTestServer(t *testing.T) *testServer {
    t.Helper()
    ctx := context.Background()
    store := repository.NewMemoryStore()

    adyar := model.Restaurant{Name: "GoodFoods Cravings Adyar 01", Area: "Adyar", Latitude: 13.0100, Longitude: 80.2200, Cuisines: "Indian, Chinese", Amenities: "Wi-Fi", Rating: 4.5}
    require.NoError(t, store.CreateRestaurant(ctx, &adyar))
    for i := 1; i <= 3; i++ {
        require.NoError(t, store.CreateTable(ctx, &model.Table{RestaurantID: adyar.ID, TableNo: i}))
    }
    near := model.Restaurant{Name: "GoodFoods Spice Adyar 02", Area: "Adyar", Latitude: 13.0120, Longitude: 80.2220, Rating: 4.0}
    require.NoError(t, store.CreateRestaurant(ctx, &near))
    user := model.User{Name: "Asha", Phone: "9000000001"}
    require.NoError(t, store.CreateUser(ctx, &user))

    engine := reservation.New(store, nil, nil, reservation.Config{})
    rh := NewReservationHandler(engine)
    ch := NewCatalogHandler(engine)

    e := echo.New()
    e.GET("/healthz", Health)
    v1 := e.Group("/v1", middleware.Identity())
    v1.GET("/restaurants/nearby", rh.Nearby)
    v1.GET("/restaurants/:id/availability", rh.CheckAvailability)
    v1.GET("/restaurants/:id/feedback", ch.RestaurantFeedback)
    v1.GET("/restaurants/:id", ch.GetRestaurant)
    v1.GET("/restaurants", ch.ListRestaurants)
    v1.GET("/areas/:area/centroid", ch.AreaCentroid)
    v1.GET("/users/:id/feedback", ch.UserFeedback)
    v1.GET("/amenities", ch.Amenities)
    v1.POST("/bookings", rh.CreateBooking)
    v1.DELETE("/bookings/:id", rh.CancelBooking)
    v1.POST("/bookings/:id/feedback", rh.SubmitFeedback)

    return &testServer{e: e, restaurant: adyar, user: user}
}

func (s *testServer) do(t *testing.T, method, target, body string, header map[string]string) (int, envelope) {
    t.Helper()
    req := httptest.NewRequest(method, target, strings.NewReader(body))
    if body != "" {
        req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
    }
    for k, v := range header {
        req.Header.Set(k, v)
    }
    rec := httptest.NewRecorder()
    s.e.ServeHTTP(rec, req)
    var env envelope
    require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
    return rec.Code, env
}

func (s *testServer) book(t *testing.T, guests int) bookingDTO {
    t.Helper()
    body := `{"user_id":` + itoa(s.user.ID) + `,"restaurant_id":` + itoa(s.restaurant.ID) +
        `,"start":"2025-12-01T19:00:00","guests":` + itoa(uint64(guests)) + `}`
    code, env := s.do(t, http.MethodPost, "/v1/bookings", body, nil)
    require.Equal(t, http.StatusCreated, code, env.Error)
    var b bookingDTO
    require.NoError(t, json.Unmarshal(env.Data, &b))
    return b
}

func itoa(n uint64) string {
    b, _ := json.Marshal(n)
    return string(b)
}

func TestHealth(t *testing.T) {
    s := newTestServer(t)
    code, env := s.do(t, http.MethodGet, "/healthz", "", nil)
    assert.Equal(t, http.StatusOK, code)
    assert.True(t, env.Success)
}

func TestCreateBookingHandler(t *testing.T) {
    s := newTestServer(t)
    b := s.book(t, 8)

    assert.Equal(t, "2025-12-01T19:00:00+05:30", b.Start)
    assert.Equal(t, "2025-12-01T21:00:00+05:30", b.End)
    require.Len(t, b.Reservations, 2)
    assert.Equal(t, 1, b.Reservations[0].TableNo)
    assert.Equal(t, 2, b.Reservations[1].TableNo)

    // one table left
    body := `{"user_id":` + itoa(s.user.ID) + `,"restaurant_id":` + itoa(s.restaurant.ID) +
        `,"start":"2025-12-01T20:00:00+05:30","guests":12}`
    code, env := s.do(t, http.MethodPost, "/v1/bookings", body, nil)
    assert.Equal(t, http.StatusConflict, code)
    assert.Equal(t, "not_enough_capacity", env.Code)
    assert.False(t, env.Retryable)
}

func TestCreateBookingValidation(t *testing.T) {
    s := newTestServer(t)
    rid := itoa(s.restaurant.ID)
    uid := itoa(s.user.ID)

    cases := []struct {
        name   string
        body   string
        header map[string]string
        status int
        code   string
    }{
        {"missing user", `{"restaurant_id":` + rid + `,"start":"2025-12-01T19:00:00","guests":2}`, nil, http.StatusBadRequest, "missing_params"},
        {"bad start", `{"user_id":` + uid + `,"restaurant_id":` + rid + `,"start":"tonight","guests":2}`, nil, http.StatusBadRequest, "invalid_request"},
        {"zero guests", `{"user_id":` + uid + `,"restaurant_id":` + rid + `,"start":"2025-12-01T19:00:00","guests":0}`, nil, http.StatusBadRequest, "invalid_guests"},
        {"reversed window", `{"user_id":` + uid + `,"restaurant_id":` + rid + `,"start":"2025-12-01T19:00:00","end":"2025-12-01T18:00:00","guests":2}`, nil, http.StatusBadRequest, "invalid_window"},
        {"unknown restaurant", `{"user_id":` + uid + `,"restaurant_id":999,"start":"2025-12-01T19:00:00","guests":2}`, nil, http.StatusNotFound, "not_found"},
        {"unknown user", `{"user_id":999,"restaurant_id":` + rid + `,"start":"2025-12-01T19:00:00","guests":2}`, nil, http.StatusNotFound, "not_found"},
    }
    for _, tc := range cases {
        t.Run(tc.name, func(t *testing.T) {
            code, env := s.do(t, http.MethodPost, "/v1/bookings", tc.body, tc.header)
            assert.Equal(t, tc.status, code, env.Error)
            assert.Equal(t, tc.code, env.Code)
            assert.False(t, env.Success)
        })
    }
}

func TestCreateBookingUserFromHeader(t *testing.T) {
    s := newTestServer(t)
    body := `{"restaurant_id":` + itoa(s.restaurant.ID) + `,"start":"2025-12-01T19:00:00","guests":2}`
    code, env := s.do(t, http.MethodPost, "/v1/bookings", body, map[string]string{middleware.HeaderUserID: itoa(s.user.ID)})
    require.Equal(t, http.StatusCreated, code, env.Error)
}

func TestCheckAvailabilityHandler(t *testing.T) {
    s := newTestServer(t)
    s.book(t, 18) // all three tables, 19:00-21:00

    q := url.Values{"start": {"2025-12-01T19:00:00"}, "guests": {"2"}}
    code, env := s.do(t, http.MethodGet, "/v1/restaurants/"+itoa(s.restaurant.ID)+"/availability?"+q.Encode(), "", nil)
    require.Equal(t, http.StatusOK, code, env.Error)

    var a availabilityDTO
    require.NoError(t, json.Unmarshal(env.Data, &a))
    assert.False(t, a.Available)
    assert.Equal(t, "2025-12-01T21:00:00+05:30", a.RequestedSlot.End)
    require.NotEmpty(t, a.NextAvailable)
    assert.Equal(t, "2025-12-01T21:00:00+05:30", a.NextAvailable[0])

    code, env = s.do(t, http.MethodGet, "/v1/restaurants/"+itoa(s.restaurant.ID)+"/availability", "", nil)
    assert.Equal(t, http.StatusBadRequest, code)
    assert.Equal(t, "invalid_request", env.Code)

    code, _ = s.do(t, http.MethodGet, "/v1/restaurants/abc/availability?"+q.Encode(), "", nil)
    assert.Equal(t, http.StatusBadRequest, code)
}

func TestCancelBookingHandler(t *testing.T) {
    s := newTestServer(t)
    b := s.book(t, 4)
    target := "/v1/bookings/" + itoa(b.BookingID)

    code, env := s.do(t, http.MethodDelete, target+"?user_id=999", "", nil)
    assert.Equal(t, http.StatusForbidden, code)
    assert.Equal(t, "unauthorized", env.Code)

    code, env = s.do(t, http.MethodDelete, target, "", nil)
    assert.Equal(t, http.StatusBadRequest, code)
    assert.Equal(t, "missing_params", env.Code)

    code, env = s.do(t, http.MethodDelete, target, "", map[string]string{middleware.HeaderUserID: itoa(s.user.ID)})
    require.Equal(t, http.StatusOK, code, env.Error)
    var out struct {
        BookingID uint64   `json:"booking_id"`
        Cancelled []uint64 `json:"cancelled_reservation_ids"`
    }
    require.NoError(t, json.Unmarshal(env.Data, &out))
    assert.Equal(t, b.BookingID, out.BookingID)
    assert.Equal(t, []uint64{b.Reservations[0].ReservationID}, out.Cancelled)

    code, env = s.do(t, http.MethodDelete, target+"?user_id="+itoa(s.user.ID), "", nil)
    assert.Equal(t, http.StatusNotFound, code)
    assert.Equal(t, "not_found", env.Code)
}

func TestSubmitFeedbackHandler(t *testing.T) {
    s := newTestServer(t)
    b := s.book(t, 2)
    target := "/v1/bookings/" + itoa(b.BookingID) + "/feedback"
    uid := itoa(s.user.ID)

    code, env := s.do(t, http.MethodPost, target, `{"user_id":`+uid+`,"stars":6}`, nil)
    assert.Equal(t, http.StatusBadRequest, code)
    assert.Equal(t, "invalid_rating", env.Code)

    code, env = s.do(t, http.MethodPost, target, `{"user_id":`+uid+`,"stars":4,"text":" lovely "}`, nil)
    require.Equal(t, http.StatusCreated, code, env.Error)

    code, env = s.do(t, http.MethodPost, target, `{"user_id":`+uid+`,"stars":5,"text":"even better"}`, nil)
    require.Equal(t, http.StatusOK, code, env.Error)
    var out struct {
        Updated  bool        `json:"updated"`
        Feedback feedbackDTO `json:"feedback"`
    }
    require.NoError(t, json.Unmarshal(env.Data, &out))
    assert.True(t, out.Updated)
    assert.Equal(t, 5, out.Feedback.Stars)

    code, env = s.do(t, http.MethodGet, "/v1/restaurants/"+itoa(s.restaurant.ID)+"/feedback", "", nil)
    require.Equal(t, http.StatusOK, code)
    var list []feedbackDTO
    require.NoError(t, json.Unmarshal(env.Data, &list))
    require.Len(t, list, 1)
    assert.Equal(t, "even better", list[0].Text)

    code, env = s.do(t, http.MethodGet, "/v1/users/"+uid+"/feedback", "", nil)
    require.Equal(t, http.StatusOK, code)
    require.NoError(t, json.Unmarshal(env.Data, &list))
    assert.Len(t, list, 1)
}

func TestNearbyHandler(t *testing.T) {
    s := newTestServer(t)

    code, env := s.do(t, http.MethodGet, "/v1/restaurants/nearby?restaurant_id="+itoa(s.restaurant.ID), "", nil)
    require.Equal(t, http.StatusOK, code, env.Error)
    var out struct {
        Base        pointDTO    `json:"base"`
        Restaurants []nearbyDTO `json:"restaurants"`
    }
    require.NoError(t, json.Unmarshal(env.Data, &out))
    assert.InDelta(t, 13.01, out.Base.Latitude, 1e-9)
    require.Len(t, out.Restaurants, 1)
    assert.Equal(t, "GoodFoods Spice Adyar 02", out.Restaurants[0].Name)
    assert.InDelta(t, 0.31, out.Restaurants[0].DistanceKm, 0.01)

    code, env = s.do(t, http.MethodGet, "/v1/restaurants/nearby", "", nil)
    assert.Equal(t, http.StatusBadRequest, code)
    assert.Equal(t, "missing_params", env.Code)

    code, _ = s.do(t, http.MethodGet, "/v1/restaurants/nearby?area=Adyar&radius_km=-1", "", nil)
    assert.Equal(t, http.StatusBadRequest, code)
}

func TestCatalogHandlers(t *testing.T) {
    s := newTestServer(t)

    code, env := s.do(t, http.MethodGet, "/v1/restaurants/"+itoa(s.restaurant.ID), "", nil)
    require.Equal(t, http.StatusOK, code)
    var r restaurantDTO
    require.NoError(t, json.Unmarshal(env.Data, &r))
    assert.Equal(t, []string{"Indian", "Chinese"}, r.Cuisines)

    code, env = s.do(t, http.MethodGet, "/v1/restaurants/404", "", nil)
    assert.Equal(t, http.StatusNotFound, code)
    assert.Equal(t, "not_found", env.Code)

    code, env = s.do(t, http.MethodGet, "/v1/restaurants?name=spice", "", nil)
    require.Equal(t, http.StatusOK, code)
    var rs []restaurantDTO
    require.NoError(t, json.Unmarshal(env.Data, &rs))
    require.Len(t, rs, 1)

    code, env = s.do(t, http.MethodGet, "/v1/restaurants?area=adyar&limit=1", "", nil)
    require.Equal(t, http.StatusOK, code)
    require.NoError(t, json.Unmarshal(env.Data, &rs))
    assert.Len(t, rs, 1)

    code, env = s.do(t, http.MethodGet, "/v1/restaurants", "", nil)
    assert.Equal(t, http.StatusBadRequest, code)
    assert.Equal(t, "missing_params", env.Code)

    code, env = s.do(t, http.MethodGet, "/v1/areas/Adyar/centroid", "", nil)
    require.Equal(t, http.StatusOK, code)
    var p pointDTO
    require.NoError(t, json.Unmarshal(env.Data, &p))
    assert.InDelta(t, 13.011, p.Latitude, 1e-3)

    code, env = s.do(t, http.MethodGet, "/v1/areas/Atlantis/centroid", "", nil)
    assert.Equal(t, http.StatusNotFound, code)
    assert.Equal(t, "no_match", env.Code)

    code, env = s.do(t, http.MethodGet, "/v1/amenities", "", nil)
    require.Equal(t, http.StatusOK, code)
    var am []string
    require.NoError(t, json.Unmarshal(env.Data, &am))
    assert.NotEmpty(t, am)
}
