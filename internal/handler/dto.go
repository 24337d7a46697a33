package handler

import (
    "math"
    "time"

    "github.com/iliyamo/table-reservation/internal/geo"
    "github.com/iliyamo/table-reservation/internal/model"
    "github.com/iliyamo/table-reservation/internal/reservation"
    "github.com/iliyamo/table-reservation/internal/utils"
)

type restaurantDTO struct {
    ID        uint64   `json:"id"`
    Name      string   `json:"name"`
    Area      string   `json:"area"`
    Latitude  float64  `json:"latitude"`
    Longitude float64  `json:"longitude"`
    Cuisines  []string `json:"cuisines"`
    Amenities []string `json:"amenities"`
    Rating    float64  `json:"rating"`
}

func toRestaurant(r model.Restaurant) restaurantDTO {
    return restaurantDTO{
        ID:        r.ID,
        Name:      r.Name,
        Area:      r.Area,
        Latitude:  r.Latitude,
        Longitude: r.Longitude,
        Cuisines:  r.CuisineList(),
        Amenities: r.AmenityList(),
        Rating:    r.Rating,
    }
}

func toRestaurants(rs []model.Restaurant) []restaurantDTO {
    out := make([]restaurantDTO, len(rs))
    for i, r := range rs {
        out[i] = toRestaurant(r)
    }
    return out
}

type nearbyDTO struct {
    restaurantDTO
    DistanceKm float64 `json:"distance_km"`
}

type pointDTO struct {
    Latitude  float64 `json:"latitude"`
    Longitude float64 `json:"longitude"`
}

func toPoint(p geo.Point) pointDTO { return pointDTO{Latitude: p.Lat, Longitude: p.Lon} }

type slotDTO struct {
    Start string `json:"start_iso"`
    End   string `json:"end_iso"`
}

type availabilityDTO struct {
    RestaurantID  uint64   `json:"restaurant_id"`
    RequestedSlot slotDTO  `json:"requested_slot"`
    Guests        int      `json:"guests"`
    Available     bool     `json:"is_available_for_requested_slot"`
    NextAvailable []string `json:"next_available_slots"`
}

func toAvailability(a reservation.Availability) availabilityDTO {
    next := make([]string, len(a.NextSlots))
    for i, t := range a.NextSlots {
        next[i] = utils.FormatISO(t)
    }
    return availabilityDTO{
        RestaurantID:  a.RestaurantID,
        RequestedSlot: slotDTO{Start: utils.FormatISO(a.Start), End: utils.FormatISO(a.End)},
        Guests:        a.Guests,
        Available:     a.Available,
        NextAvailable: next,
    }
}

type assignmentDTO struct {
    ReservationID uint64 `json:"reservation_id"`
    TableNo       int    `json:"table_no"`
}

type bookingDTO struct {
    BookingID    uint64          `json:"booking_id"`
    RestaurantID uint64          `json:"restaurant_id"`
    UserID       uint64          `json:"user_id"`
    Start        string          `json:"start_iso"`
    End          string          `json:"end_iso"`
    Guests       int             `json:"guests"`
    Reservations []assignmentDTO `json:"reservations"`
}

func toBooking(b reservation.BookingResult) bookingDTO {
    rows := make([]assignmentDTO, len(b.Tables))
    for i, t := range b.Tables {
        rows[i] = assignmentDTO{ReservationID: t.ReservationID, TableNo: t.TableNo}
    }
    return bookingDTO{
        BookingID:    b.BookingID,
        RestaurantID: b.RestaurantID,
        UserID:       b.UserID,
        Start:        utils.FormatISO(b.Start),
        End:          utils.FormatISO(b.End),
        Guests:       b.Guests,
        Reservations: rows,
    }
}

type feedbackDTO struct {
    ID           uint64 `json:"feedback_id"`
    BookingID    uint64 `json:"booking_id"`
    UserID       uint64 `json:"user_id"`
    RestaurantID uint64 `json:"restaurant_id"`
    Stars        int    `json:"stars"`
    Text         string `json:"text"`
    CreatedAt    string `json:"created_at"`
}

func toFeedback(f model.Feedback) feedbackDTO {
    return feedbackDTO{
        ID:           f.ID,
        BookingID:    f.BookingID,
        UserID:       f.UserID,
        RestaurantID: f.RestaurantID,
        Stars:        f.Stars,
        Text:         f.Text,
        CreatedAt:    utils.FormatISO(f.CreatedAt),
    }
}

func toFeedbacks(fs []model.Feedback) []feedbackDTO {
    out := make([]feedbackDTO, len(fs))
    for i, f := range fs {
        out[i] = toFeedback(f)
    }
    return out
}

func round2(x float64) float64 { return math.Round(x*100) / 100 }

// parseTime reads an ISO-8601 query or body value; empty yields zero.
func parseTime(s string) (time.Time, error) {
    if s == "" {
        return time.Time{}, nil
    }
    return utils.ParseISO(s)
}
