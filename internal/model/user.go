// Package model defines the data structures used throughout the application.
package model

import "time"

// User is a row of the users table.
//
// Password carries `omitempty` so that reads which deliberately leave it blank
// (list and get) drop the key from the JSON body entirely, while create and
// update responses still show it.
//
// WHY Birthday string (not time.Time)?
// Birthdays travel as "YYYY-MM-DD" text in both directions and validation only
// checks the shape, so "2024-13-40" is a legal value. A time.Time could not
// hold it.
type User struct {
	ID        int64     `json:"id"                 db:"id"`
	FirstName string    `json:"firstName"          db:"first_name"`
	LastName  string    `json:"lastName"           db:"last_name"`
	Email     string    `json:"email"              db:"email"`
	Password  string    `json:"password,omitempty" db:"password"`
	Birthday  string    `json:"birthday"           db:"birthday"`
	CreatedAt time.Time `json:"createdAt"          db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt"          db:"updated_at"`
}

// WithoutPassword returns a copy of u with the password cleared.
func (u User) WithoutPassword() User {
	u.Password = ""
	return u
}

// UserInput is the decoded body of a create or update request.
//
// Pointers distinguish an absent key (nil) from an explicit empty string,
// which matters for update: an absent password is skipped by validation but
// an empty one is rejected.
type UserInput struct {
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
	Email     *string `json:"email"`
	Password  *string `json:"password"`
	Birthday  *string `json:"birthday"`
}

// Value returns the string behind p, or "" when p is nil.
func Value(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
