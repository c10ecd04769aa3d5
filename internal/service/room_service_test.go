/*
 * Copyright (c) 2026 Francesco Biribo'
 *
 * Permission to use, copy, modify, and distribute this software for any purpose with or without fee is hereby granted, provided that the above copyright notice and this permission notice appear in all copies.
 *
 * THE SOFTWARE IS PROVIDED "AS IS" AND THE AUTHOR DISCLAIMS ALL WARRANTIES WITH REGARD TO THIS SOFTWARE INCLUDING ALL IMPLIED WARRANTIES OF MERCHANTABILITY AND FITNESS. IN NO EVENT SHALL THE AUTHOR BE LIABLE FOR ANY SPECIAL, DIRECT, INDIRECT, OR CONSEQUENTIAL DAMAGES OR ANY DAMAGES WHATSOEVER RESULTING FROM LOSS OF USE, DATA OR PROFITS, WHETHER IN AN ACTION OF CONTRACT, NEGLIGENCE OR OTHER TORTIOUS ACTION, ARISING OUT OF OR IN CONNECTION WITH THE USE OR PERFORMANCE OF THIS SOFTWARE.
 */

package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"studybud/internal/entity"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateRoomAppearsOnceWithActorAsHost(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()
	alice := s.register(t, "alice")

	room, err := s.rooms.CreateRoom(ctx, alice, RoomForm{Topic: " Math ", Name: " Algebra ", Description: ""})
	require.NoError(t, err)

	listing, err := s.listing.Browse(ctx, "")
	require.NoError(t, err)
	require.Equal(t, []string{"Algebra"}, names(listing.Rooms))
	assert.Equal(t, room.ID, listing.Rooms[0].ID)
	assert.True(t, listing.Rooms[0].IsHostedBy(alice))
	assert.Equal(t, "Math", listing.Rooms[0].TopicName())
	assert.Nil(t, listing.Rooms[0].Description)

	expected := `
# HELP studybud_rooms_created_total Rooms created.
# TYPE studybud_rooms_created_total counter
studybud_rooms_created_total 1
`
	assert.NoError(t, testutil.GatherAndCompare(s.metrics.Registry(), strings.NewReader(expected), "studybud_rooms_created_total"))
}

func TestCreateRoomValidation(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()
	alice := s.register(t, "alice")

	tests := []struct {
		name   string
		form   RoomForm
		fields []string
	}{
		{"missing name", RoomForm{Topic: "Math"}, []string{"name"}},
		{"missing topic", RoomForm{Name: "Algebra"}, []string{"topic"}},
		{"blank both", RoomForm{Topic: "  ", Name: "\t"}, []string{"name", "topic"}},
		{"name too long", RoomForm{Topic: "Math", Name: strings.Repeat("x", MaxNameLength+1)}, []string{"name"}},
		{"topic too long", RoomForm{Topic: strings.Repeat("é", MaxNameLength+1), Name: "Algebra"}, []string{"topic"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.rooms.CreateRoom(ctx, alice, tt.form)
			var verr *ValidationError
			require.True(t, errors.As(err, &verr), "expected a ValidationError, got %v", err)
			for _, f := range tt.fields {
				assert.Contains(t, verr.Fields, f)
			}
			assert.Len(t, verr.Fields, len(tt.fields))
		})
	}

	_, err := s.rooms.CreateRoom(ctx, alice, RoomForm{Topic: "Math", Name: strings.Repeat("é", MaxNameLength)})
	assert.NoError(t, err, "200 characters is still accepted")

	_, err = s.rooms.CreateRoom(ctx, nil, RoomForm{Topic: "Math", Name: "Algebra"})
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestPostMessageScenario(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()
	alice := s.register(t, "alice")
	bob := s.register(t, "bob")
	algebra := s.createRoom(t, alice, "Algebra", "Math")

	_, err := s.rooms.PostMessage(ctx, bob, algebra.ID, "hi")
	require.NoError(t, err)
	_, err = s.rooms.PostMessage(ctx, bob, algebra.ID, "hi again")
	require.NoError(t, err)

	detail, err := s.rooms.GetRoom(ctx, algebra.ID)
	require.NoError(t, err)
	require.Len(t, detail.Messages, 2)
	assert.Equal(t, "hi again", detail.Messages[0].Body)
	assert.Equal(t, "hi", detail.Messages[1].Body)
	assert.Equal(t, "bob", detail.Messages[1].Author.Username)
	require.Len(t, detail.Participants, 1, "posting twice must not duplicate the participant")
	assert.Equal(t, bob.ID, detail.Participants[0].ID)

	_, err = s.rooms.PostMessage(ctx, alice, algebra.ID, "welcome")
	require.NoError(t, err)
	detail, err = s.rooms.GetRoom(ctx, algebra.ID)
	require.NoError(t, err)
	assert.Len(t, detail.Participants, 2)
}

func TestPostMessageFailures(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()
	alice := s.register(t, "alice")
	algebra := s.createRoom(t, alice, "Algebra", "Math")

	_, err := s.rooms.PostMessage(ctx, nil, algebra.ID, "hi")
	assert.ErrorIs(t, err, ErrUnauthenticated)

	_, err = s.rooms.PostMessage(ctx, alice, algebra.ID, "   ")
	var verr *ValidationError
	assert.True(t, errors.As(err, &verr))

	_, err = s.rooms.PostMessage(ctx, alice, "missing", "hi")
	assert.ErrorIs(t, err, ErrNotFound)

	detail, err := s.rooms.GetRoom(ctx, algebra.ID)
	require.NoError(t, err)
	assert.Empty(t, detail.Messages)
	assert.Empty(t, detail.Participants)

	_, err = s.rooms.GetRoom(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateRoomByNonHostIsForbidden(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()
	alice := s.register(t, "alice")
	bob := s.register(t, "bob")
	algebra := s.createRoom(t, alice, "Algebra", "Math")

	_, err := s.rooms.UpdateRoom(ctx, bob, algebra.ID, RoomForm{Topic: "Chemistry", Name: "Hijacked"})
	assert.ErrorIs(t, err, ErrForbidden)

	// An invalid form from a non-host is still Forbidden
	_, err = s.rooms.UpdateRoom(ctx, bob, algebra.ID, RoomForm{})
	assert.ErrorIs(t, err, ErrForbidden)

	detail, err := s.rooms.GetRoom(ctx, algebra.ID)
	require.NoError(t, err)
	assert.Equal(t, "Algebra", detail.Room.Name)
	assert.Equal(t, "Math", detail.Room.TopicName())

	listing, err := s.listing.Browse(ctx, "Chemistry")
	require.NoError(t, err)
	assert.Empty(t, listing.Rooms)
	assert.Equal(t, int64(1), listing.TopicCount, "a refused update creates no topic")
}

func TestUpdateRoomByHost(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()
	alice := s.register(t, "alice")
	algebra := s.createRoom(t, alice, "Algebra", "Math")

	room, err := s.rooms.UpdateRoom(ctx, alice, algebra.ID, RoomForm{Topic: "Algebra", Name: "Linear Algebra", Description: "matrices"})
	require.NoError(t, err)
	assert.Equal(t, "Linear Algebra", room.Name)
	assert.Equal(t, "Algebra", room.TopicName())
	assert.Equal(t, "matrices", room.DescriptionText())
	assert.True(t, room.IsHostedBy(alice))

	_, err = s.rooms.UpdateRoom(ctx, alice, algebra.ID, RoomForm{Topic: "Algebra"})
	var verr *ValidationError
	assert.True(t, errors.As(err, &verr))

	_, err = s.rooms.UpdateRoom(ctx, alice, "missing", RoomForm{Topic: "Algebra", Name: "x"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRoomDeletionIsTwoPhase(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()
	alice := s.register(t, "alice")
	bob := s.register(t, "bob")
	algebra := s.createRoom(t, alice, "Algebra", "Math")
	_, err := s.rooms.PostMessage(ctx, bob, algebra.ID, "hi")
	require.NoError(t, err)

	_, err = s.rooms.PrepareRoomDeletion(ctx, bob, algebra.ID)
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = s.rooms.PrepareRoomDeletion(ctx, alice, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	pending, err := s.rooms.PrepareRoomDeletion(ctx, alice, algebra.ID)
	require.NoError(t, err)
	assert.Equal(t, KindRoom, pending.ResourceKind)
	assert.Equal(t, algebra.ID, pending.ResourceID)
	assert.Equal(t, "Algebra", pending.Label)
	assert.NotEmpty(t, pending.Token)

	// A pending confirmation is worthless in someone else's hands
	assert.ErrorIs(t, s.rooms.DeleteRoom(ctx, bob, pending), ErrForbidden)
	assert.Error(t, s.rooms.DeleteRoom(ctx, alice, &PendingConfirmation{ResourceKind: KindMessage, ResourceID: algebra.ID}))

	require.NoError(t, s.rooms.DeleteRoom(ctx, alice, pending))
	_, err = s.rooms.GetRoom(ctx, algebra.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	profile, err := s.users.GetProfile(ctx, bob.ID)
	require.NoError(t, err)
	assert.Empty(t, profile.Messages, "messages go away with their room")

	assert.ErrorIs(t, s.rooms.DeleteRoom(ctx, alice, pending), ErrNotFound)
}

func TestGetOwnedRoom(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()
	alice := s.register(t, "alice")
	bob := s.register(t, "bob")
	algebra := s.createRoom(t, alice, "Algebra", "Math")

	room, err := s.rooms.GetOwnedRoom(ctx, alice, algebra.ID)
	require.NoError(t, err)
	assert.Equal(t, RoomForm{Topic: "Math", Name: "Algebra"}, RoomFormOf(room))

	_, err = s.rooms.GetOwnedRoom(ctx, bob, algebra.ID)
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = s.rooms.GetOwnedRoom(ctx, nil, algebra.ID)
	assert.ErrorIs(t, err, ErrUnauthenticated)

	var anonymous *entity.User
	assert.False(t, room.IsHostedBy(anonymous))
}
