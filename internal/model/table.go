package model

// DefaultTableSeats is the seat count every table is sized with.
const DefaultTableSeats = 6

// Table is a physical table inside a restaurant.  TableNo orders the
// tables on the floor so that consecutive numbers sit next to each
// other; the allocator relies on that to seat a party together.
//
// Fields:
//  ID           – primary key identifier.
//  RestaurantID – owning restaurant.
//  TableNo      – floor number, unique per restaurant.
//  Seats        – seat capacity.
type Table struct {
    ID           uint64 // restaurant_tables.id
    RestaurantID uint64 // restaurant_tables.restaurant_id
    TableNo      int    // restaurant_tables.table_no
    Seats        int    // restaurant_tables.seats
}
