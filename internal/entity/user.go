/*
 * Copyright (c) 2026 Francesco Biribo'
 *
 * Permission to use, copy, modify, and distribute this software for any purpose with or without fee is hereby granted, provided that the above copyright notice and this permission notice appear in all copies.
 *
 * THE SOFTWARE IS PROVIDED "AS IS" AND THE AUTHOR DISCLAIMS ALL WARRANTIES WITH REGARD TO THIS SOFTWARE INCLUDING ALL IMPLIED WARRANTIES OF MERCHANTABILITY AND FITNESS. IN NO EVENT SHALL THE AUTHOR BE LIABLE FOR ANY SPECIAL, DIRECT, INDIRECT, OR CONSEQUENTIAL DAMAGES OR ANY DAMAGES WHATSOEVER RESULTING FROM LOSS OF USE, DATA OR PROFITS, WHETHER IN AN ACTION OF CONTRACT, NEGLIGENCE OR OTHER TORTIOUS ACTION, ARISING OUT OF OR IN CONNECTION WITH THE USE OR PERFORMANCE OF THIS SOFTWARE.
 */

package entity

import "time"

// Identity of someone using the site. The display name is the username itself.
type User struct {
	ID        string    `gorm:"primaryKey" json:"id"`                          // Unique identifier
	Username  string    `gorm:"not null;uniqueIndex;size:150" json:"username"` // Always stored lowercase
	CreatedAt time.Time `gorm:"not null;index" json:"created-at"`              // Time of registration

	Secret UserSecret `gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE" json:"-"` // Password hash, loaded only for login
}

// Returns true when u and other are the same identity. A nil user is anonymous and never matches.
func (u *User) Is(other *User) bool {
	if u == nil || other == nil {
		return false
	}
	return u.ID == other.ID
}

// Returns true when u is the identity with the given id.
func (u *User) HasID(id *string) bool {
	if u == nil || id == nil {
		return false
	}
	return u.ID == *id
}
