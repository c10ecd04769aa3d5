/*
 * Copyright (c) 2026 Francesco Biribo'
 *
 * Permission to use, copy, modify, and distribute this software for any purpose with or without fee is hereby granted, provided that the above copyright notice and this permission notice appear in all copies.
 *
 * THE SOFTWARE IS PROVIDED "AS IS" AND THE AUTHOR DISCLAIMS ALL WARRANTIES WITH REGARD TO THIS SOFTWARE INCLUDING ALL IMPLIED WARRANTIES OF MERCHANTABILITY AND FITNESS. IN NO EVENT SHALL THE AUTHOR BE LIABLE FOR ANY SPECIAL, DIRECT, INDIRECT, OR CONSEQUENTIAL DAMAGES OR ANY DAMAGES WHATSOEVER RESULTING FROM LOSS OF USE, DATA OR PROFITS, WHETHER IN AN ACTION OF CONTRACT, NEGLIGENCE OR OTHER TORTIOUS ACTION, ARISING OUT OF OR IN CONNECTION WITH THE USE OR PERFORMANCE OF THIS SOFTWARE.
 */

package service

import (
	"encoding/gob"

	"github.com/google/uuid"
)

// Kinds of resources that are deleted in two steps
const (
	KindRoom    = "room"
	KindMessage = "message"
)

// PendingConfirmation is issued after the ownership check of a deletion and must be handed back to commit it.
// It travels in the session between the confirmation page and the commit, hence the gob registration.
type PendingConfirmation struct {
	ResourceKind string // KindRoom or KindMessage
	ResourceID   string // ID of the room or message to delete
	Label        string // What the confirmation page names, the room name or the message preview
	Token        string // Random value the commit has to echo back
}

func init() {
	gob.Register(PendingConfirmation{})
}

func newPendingConfirmation(kind, id, label string) *PendingConfirmation {
	return &PendingConfirmation{
		ResourceKind: kind,
		ResourceID:   id,
		Label:        label,
		Token:        uuid.New().String(),
	}
}

// Matches reports whether p confirms the deletion of the given resource with the given token.
func (p *PendingConfirmation) Matches(kind, id, token string) bool {
	if p == nil || token == "" {
		return false
	}
	return p.ResourceKind == kind && p.ResourceID == id && p.Token == token
}
