// Package seed loads the deterministic demo dataset: fifty restaurants
// around Chennai, ten users, a fully booked dinner at the flagship
// restaurant and a handful of feedback entries.
package seed

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/iliyamo/table-reservation/internal/model"
	"github.com/iliyamo/table-reservation/internal/repository"
	"github.com/iliyamo/table-reservation/internal/utils"
)

const (
	// RandSeed fixes cuisine and amenity picks across runs.
	RandSeed = 42

	restaurantCount = 50
	userCount       = 10
	flagshipTables  = 10
)

// Flagship is the first restaurant created; the demo scenarios revolve
// around it.
var Flagship = model.Restaurant{
	Name:      "GoodFoods Cravings Adyar 01",
	Area:      "Adyar",
	Latitude:  13.0100,
	Longitude: 80.2200,
	Cuisines:  "Indian, Chinese",
	Amenities: "WiFi, Outdoor Seating, Parking",
	Rating:    4.3,
}

var (
	areas = []string{
		"Adyar", "Velachery", "T Nagar", "Anna Nagar", "Perungudi",
		"KK Nagar", "Tambaram", "Nungambakkam", "Guindy", "Mylapore",
	}
	catchy = []string{"Cravings", "Tasty", "Delight", "Feast", "Bistro", "Aroma", "Spice", "Grill", "Treats", "Hub"}

	cuisinePool = []string{"Italian", "Indian", "Chinese", "Mexican", "Continental", "South Indian"}
	amenityPool = []string{"WiFi", "Parking", "AC", "Outdoor Seating", "Rooftop", "Live Music", "Valet", "Pet Friendly"}

	// neighbours of the flagship, by position in the creation order
	nearbyIndex  = []int{3, 7, 12, 18, 25}
	nearbyCoords = [][2]float64{
		{13.0125, 80.2218},
		{13.0078, 80.2185},
		{13.0156, 80.2240},
		{13.0090, 80.2225},
		{13.0132, 80.2175},
	}
)

var flagshipFeedback = []string{
	"Loved the Indian thali here and the outdoor seating made the evening delightful.",
	"Chinese noodles were flavorful, but WiFi was a bit slow during my visit.",
	"Great parking and neat AC dining area. The biryani was top notch.",
	"Service was slow that night, but the veg Manchurian was tasty.",
	"Outdoor seating is fantastic for a weekend dinner; kid-friendly too.",
	"I expected faster WiFi; food quality is normally good though.",
	"Good value for Indian and Chinese combos; staff helpful with parking guidance.",
}

var regularFeedback = []string{
	"I love Indian food and always prefer outdoor seating when the weather is good.",
	"Not a fan of slow WiFi; I like places with reliable internet and good AC.",
	"My favourite is spicy Chinese and a quiet corner. I dislike noisy restaurants.",
}

var sampleFeedback = []string{
	"Good ambience and food.",
	"Service could be faster.",
	"Loved the desserts here.",
	"Parking was a problem during peak hours.",
}

// Summary reports what was created.
type Summary struct {
	Restaurants    int
	Tables         int
	Users          int
	Bookings       int
	Feedback       int
	FlagshipID     uint64
	NearbyIDs      []uint64
	BusyBookingIDs []uint64 // flagship, Dec 1 19:00-21:00
}

// Run loads the dataset into an empty store.  now anchors the "tomorrow"
// bookings of the first user; the busy dinner is always on Dec 1 of
// now's year.  Running it twice against the same database fails with
// repository.ErrDuplicate on the first user.
func Run(ctx context.Context, store repository.Seeder, now time.Time) (Summary, error) {
	var (
		sum   Summary
		rng   = rand.New(rand.NewSource(RandSeed))
		rests = make([]model.Restaurant, 0, restaurantCount)
	)

	now = now.In(utils.IST)
	for i := 1; i <= restaurantCount; i++ {
		r := restaurantAt(i, rng)
		if err := store.CreateRestaurant(ctx, &r); err != nil {
			return sum, fmt.Errorf("restaurant %d: %w", i, err)
		}
		rests = append(rests, r)

		n := 5 + (i*13)%8
		if i == 1 {
			n = flagshipTables
		}
		for no := 1; no <= n; no++ {
			t := model.Table{RestaurantID: r.ID, TableNo: no, Seats: model.DefaultTableSeats}
			if err := store.CreateTable(ctx, &t); err != nil {
				return sum, fmt.Errorf("table %d of restaurant %d: %w", no, i, err)
			}
		}
		sum.Tables += n
	}
	sum.Restaurants = len(rests)
	sum.FlagshipID = rests[0].ID
	for _, idx := range nearbyIndex {
		sum.NearbyIDs = append(sum.NearbyIDs, rests[idx-1].ID)
	}

	users := make([]model.User, 0, userCount)
	for i := 1; i <= userCount; i++ {
		u := model.User{
			Name:  fmt.Sprintf("User %d", i),
			Phone: fmt.Sprintf("99999%05d", i),
			Email: fmt.Sprintf("user%d@example.com", i),
		}
		if err := store.CreateUser(ctx, &u); err != nil {
			return sum, fmt.Errorf("user %d: %w", i, err)
		}
		users = append(users, u)
	}
	sum.Users = len(users)

	err := store.WithTx(ctx, func(q repository.Queries) error {
		b := &booker{q: q, sum: &sum}
		tomorrow := now.AddDate(0, 0, 1)
		at := func(day time.Time, h, m int) time.Time {
			return time.Date(day.Year(), day.Month(), day.Day(), h, m, 0, 0, utils.IST)
		}

		// the first user's own history
		regular := []struct {
			rest  model.Restaurant
			start time.Time
			guest int
			stars int
		}{
			{rests[0], at(tomorrow, 19, 0), 4, 5},
			{rests[nearbyIndex[2]-1], at(tomorrow, 20, 0), 2, 4},
			{rests[0], at(tomorrow, 12, 30), 2, 3},
		}
		for i, r := range regular {
			bk, err := b.book(ctx, users[0].ID, r.rest.ID, r.start, r.guest)
			if err != nil {
				return err
			}
			if bk.ID != 0 {
				if err := b.feedback(ctx, bk, r.stars, regularFeedback[i]); err != nil {
					return err
				}
			}
		}

		// fill every remaining flagship table for the Dec 1 dinner
		dec1 := time.Date(now.Year(), time.December, 1, 0, 0, 0, 0, utils.IST)
		start, end := at(dec1, 19, 0), at(dec1, 21, 0)
		free, err := q.AvailableTables(ctx, rests[0].ID, start, end)
		if err != nil {
			return fmt.Errorf("flagship tables: %w", err)
		}
		for i, t := range free {
			user := users[1+i%(userCount-1)]
			bk, err := b.insert(ctx, user.ID, rests[0].ID, start, end, 6, []uint64{t.ID})
			if err != nil {
				return err
			}
			sum.BusyBookingIDs = append(sum.BusyBookingIDs, bk.ID)
			if i < len(flagshipFeedback) {
				stars := 4
				if i%3 == 0 {
					stars = 3
				}
				if err := b.feedback(ctx, bk, stars, flagshipFeedback[i]); err != nil {
					return err
				}
			}
		}

		// scattered activity elsewhere
		for _, idx := range []int{2, 4, 5, 8, 20} {
			r := rests[idx-1]
			day := now.AddDate(0, 0, idx%5)
			bk, err := b.book(ctx, users[idx%userCount].ID, r.ID, at(day, 18, 0), 2+idx%3)
			if err != nil {
				return err
			}
			if bk.ID == 0 {
				continue
			}
			stars := 3
			if idx%2 == 0 {
				stars = 4
			}
			if err := b.feedback(ctx, bk, stars, sampleFeedback[idx%len(sampleFeedback)]); err != nil {
				return err
			}
		}
		return nil
	})
	return sum, err
}

// restaurantAt builds the i-th restaurant (1-based).
func restaurantAt(i int, rng *rand.Rand) model.Restaurant {
	if i == 1 {
		return Flagship
	}
	// draw even for fixed rows so later picks do not shift
	cuisines := pick(rng, cuisinePool, 2)
	amenities := pick(rng, amenityPool, 1+rng.Intn(3))

	r := model.Restaurant{
		Cuisines:  strings.Join(cuisines, ", "),
		Amenities: strings.Join(amenities, ", "),
		Rating:    float64(30+(i*17)%20) / 10,
	}
	if n := indexOf(nearbyIndex, i); n >= 0 {
		r.Area = "Adyar"
		r.Latitude, r.Longitude = nearbyCoords[n][0], nearbyCoords[n][1]
		r.Amenities = "Outdoor Seating, WiFi"
	} else {
		r.Area = areas[i%len(areas)]
		r.Latitude = 13.05 + float64((i*37)%100-50)/1000
		r.Longitude = 80.25 + float64((i*73)%100-50)/1000
	}
	r.Name = fmt.Sprintf("GoodFoods %s %s %02d", catchy[(i-1)%len(catchy)], r.Area, i)
	return r
}

func pick(rng *rand.Rand, pool []string, k int) []string {
	idx := rng.Perm(len(pool))[:k]
	out := make([]string, k)
	for i, j := range idx {
		out[i] = pool[j]
	}
	return out
}

func indexOf(xs []int, x int) int {
	for i, v := range xs {
		if v == x {
			return i
		}
	}
	return -1
}

// booker inserts bookings inside the seeding transaction.
type booker struct {
	q   repository.Queries
	sum *Summary
}

// book takes the lowest free table for a two hour slot.  A zero booking
// means the slot was already full.
func (b *booker) book(ctx context.Context, userID, restaurantID uint64, start time.Time, guests int) (model.Booking, error) {
	end := start.Add(2 * time.Hour)
	free, err := b.q.AvailableTables(ctx, restaurantID, start, end)
	if err != nil {
		return model.Booking{}, fmt.Errorf("tables of restaurant %d: %w", restaurantID, err)
	}
	if len(free) == 0 {
		return model.Booking{}, nil
	}
	return b.insert(ctx, userID, restaurantID, start, end, guests, []uint64{free[0].ID})
}

func (b *booker) insert(ctx context.Context, userID, restaurantID uint64, start, end time.Time, guests int, tables []uint64) (model.Booking, error) {
	bk := model.Booking{
		UserID:       userID,
		RestaurantID: restaurantID,
		Start:        start,
		End:          end,
		Guests:       guests,
		Status:       model.BookingStatusConfirmed,
	}
	if err := b.q.CreateBooking(ctx, &bk); err != nil {
		return bk, fmt.Errorf("booking: %w", err)
	}
	if _, err := b.q.CreateReservations(ctx, bk.ID, tables); err != nil {
		return bk, fmt.Errorf("reservations of booking %d: %w", bk.ID, err)
	}
	b.sum.Bookings++
	return bk, nil
}

func (b *booker) feedback(ctx context.Context, bk model.Booking, stars int, text string) error {
	f := model.Feedback{
		BookingID:    bk.ID,
		UserID:       bk.UserID,
		RestaurantID: bk.RestaurantID,
		Stars:        stars,
		Text:         text,
	}
	if err := b.q.CreateFeedback(ctx, &f); err != nil {
		return fmt.Errorf("feedback for booking %d: %w", bk.ID, err)
	}
	b.sum.Feedback++
	return nil
}
