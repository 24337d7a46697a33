package model

import "time"

// User represents a guest that can own bookings and feedback.  The
// service trusts the caller-supplied user ID; no credentials are kept.
//
// Fields:
//  ID        – primary key identifier.
//  Name      – optional display name.
//  Phone     – unique phone number.
//  Email     – optional email address.
//  CreatedAt – timestamp of creation.
type User struct {
    ID        uint64    // users.id
    Name      string    // users.name
    Phone     string    // users.phone
    Email     string    // users.email
    CreatedAt time.Time // users.created_at
}
