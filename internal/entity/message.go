/*
 * Copyright (c) 2026 Francesco Biribo'
 *
 * Permission to use, copy, modify, and distribute this software for any purpose with or without fee is hereby granted, provided that the above copyright notice and this permission notice appear in all copies.
 *
 * THE SOFTWARE IS PROVIDED "AS IS" AND THE AUTHOR DISCLAIMS ALL WARRANTIES WITH REGARD TO THIS SOFTWARE INCLUDING ALL IMPLIED WARRANTIES OF MERCHANTABILITY AND FITNESS. IN NO EVENT SHALL THE AUTHOR BE LIABLE FOR ANY SPECIAL, DIRECT, INDIRECT, OR CONSEQUENTIAL DAMAGES OR ANY DAMAGES WHATSOEVER RESULTING FROM LOSS OF USE, DATA OR PROFITS, WHETHER IN AN ACTION OF CONTRACT, NEGLIGENCE OR OTHER TORTIOUS ACTION, ARISING OUT OF OR IN CONNECTION WITH THE USE OR PERFORMANCE OF THIS SOFTWARE.
 */

package entity

import (
	"time"
	"unicode/utf8"
)

// Represents a message posted in a room.
type Message struct {
	ID string `gorm:"primaryKey" json:"id"` // Unique identifier

	AuthorID string `gorm:"not null;index" json:"author-id"`                               // Identity that posted the message
	Author   *User  `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE" json:"author"` // Deleting the author deletes the message

	RoomID string `gorm:"not null;index" json:"room-id"`                             // Room the message was posted in
	Room   *Room  `gorm:"foreignKey:RoomID;constraint:OnDelete:CASCADE" json:"room"` // Deleting the room deletes the message

	Body string `gorm:"type:text;not null" json:"body"` // Actual content of the message

	CreatedAt time.Time `gorm:"not null;index" json:"created-at"` // Time of creation
	UpdatedAt time.Time `gorm:"not null;index" json:"updated-at"` // Time of the last edit
}

// Returns the first 50 characters of the body, used where a short label is needed.
func (m *Message) Preview() string {
	if utf8.RuneCountInString(m.Body) <= 50 {
		return m.Body
	}
	return string([]rune(m.Body)[:50])
}

// Returns true if the given user wrote the message.
func (m *Message) IsAuthoredBy(u *User) bool {
	return u != nil && u.ID == m.AuthorID
}
