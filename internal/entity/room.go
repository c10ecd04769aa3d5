/*
 * Copyright (c) 2026 Francesco Biribo'
 *
 * Permission to use, copy, modify, and distribute this software for any purpose with or without fee is hereby granted, provided that the above copyright notice and this permission notice appear in all copies.
 *
 * THE SOFTWARE IS PROVIDED "AS IS" AND THE AUTHOR DISCLAIMS ALL WARRANTIES WITH REGARD TO THIS SOFTWARE INCLUDING ALL IMPLIED WARRANTIES OF MERCHANTABILITY AND FITNESS. IN NO EVENT SHALL THE AUTHOR BE LIABLE FOR ANY SPECIAL, DIRECT, INDIRECT, OR CONSEQUENTIAL DAMAGES OR ANY DAMAGES WHATSOEVER RESULTING FROM LOSS OF USE, DATA OR PROFITS, WHETHER IN AN ACTION OF CONTRACT, NEGLIGENCE OR OTHER TORTIOUS ACTION, ARISING OUT OF OR IN CONNECTION WITH THE USE OR PERFORMANCE OF THIS SOFTWARE.
 */

package entity

import "time"

// Study room, created by its host and joined by whoever posts in it.
type Room struct {
	ID string `gorm:"primaryKey" json:"id"` // Unique identifier

	HostID *string `gorm:"index" json:"host-id"`                                      // Identity that created the room, sole authority on it
	Host   *User   `gorm:"foreignKey:HostID;constraint:OnDelete:CASCADE" json:"host"` // Deleting the host deletes the room

	TopicID *string `gorm:"index" json:"topic-id"`                                        // Topic of the room, if any
	Topic   *Topic  `gorm:"foreignKey:TopicID;constraint:OnDelete:SET NULL" json:"topic"` // Deleting the topic leaves the room without one

	Name        string  `gorm:"not null;size:200" json:"name"` // Name of the room
	Description *string `gorm:"type:text" json:"description"`  // Optional free-text description

	Participants []*User `gorm:"many2many:room_participants" json:"participants"` // Identities that have posted in the room

	CreatedAt time.Time `gorm:"not null;index" json:"created-at"` // Time of creation
	UpdatedAt time.Time `gorm:"not null;index" json:"updated-at"` // Time of the last edit
}

// Join table between rooms and their participants.
type RoomParticipant struct {
	RoomID   string    `gorm:"primaryKey"`
	UserID   string    `gorm:"primaryKey"`
	JoinedAt time.Time `gorm:"autoCreateTime"`
}

// Description as plain text, empty when unset.
func (r *Room) DescriptionText() string {
	if r.Description == nil {
		return ""
	}
	return *r.Description
}

// Topic name, empty when the room has no topic.
func (r *Room) TopicName() string {
	if r.Topic == nil {
		return ""
	}
	return r.Topic.Name
}

// Returns true if the given user is the room's host.
func (r *Room) IsHostedBy(u *User) bool {
	return u.HasID(r.HostID)
}
