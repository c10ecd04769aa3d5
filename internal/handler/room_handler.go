/*
 * Copyright (c) 2026 Francesco Biribo'
 *
 * Permission to use, copy, modify, and distribute this software for any purpose with or without fee is hereby granted, provided that the above copyright notice and this permission notice appear in all copies.
 *
 * THE SOFTWARE IS PROVIDED "AS IS" AND THE AUTHOR DISCLAIMS ALL WARRANTIES WITH REGARD TO THIS SOFTWARE INCLUDING ALL IMPLIED WARRANTIES OF MERCHANTABILITY AND FITNESS. IN NO EVENT SHALL THE AUTHOR BE LIABLE FOR ANY SPECIAL, DIRECT, INDIRECT, OR CONSEQUENTIAL DAMAGES OR ANY DAMAGES WHATSOEVER RESULTING FROM LOSS OF USE, DATA OR PROFITS, WHETHER IN AN ACTION OF CONTRACT, NEGLIGENCE OR OTHER TORTIOUS ACTION, ARISING OUT OF OR IN CONNECTION WITH THE USE OR PERFORMANCE OF THIS SOFTWARE.
 */

package handler

import (
	"errors"
	"net/http"

	"studybud/internal/entity"
	"studybud/internal/middleware"
	"studybud/internal/nlog"
	"studybud/internal/service"
	"studybud/internal/view"

	"github.com/gorilla/mux"
	"github.com/gorilla/sessions"
)

// Payload of room.html
type roomPage struct {
	Detail *service.RoomDetail
	Body   string // Message being written, kept when it's refused
	Error  string
}

// Payload of room_form.html
type roomFormPage struct {
	Form    service.RoomForm
	Errors  map[string]string
	Topics  []*entity.Topic
	Action  string
	Cancel  string
	Editing bool
}

// Payload of delete.html
type deletePage struct {
	Pending *service.PendingConfirmation
	Action  string
	Cancel  string
}

type RoomHandler struct {
	pages
	roomService    service.RoomService
	listingService service.ListingService
}

func NewRoomHandler(roomService service.RoomService, listingService service.ListingService, cookieStore sessions.Store, renderer *view.PageRenderer, logger nlog.Logger) *RoomHandler {
	return &RoomHandler{
		pages:          pages{cookieStore: cookieStore, renderer: renderer, logger: logger},
		roomService:    roomService,
		listingService: listingService,
	}
}

func (h *RoomHandler) Home(w http.ResponseWriter, r *http.Request) {
	listing, err := h.listingService.Browse(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.render(w, r, http.StatusOK, "home.html", "Home", listing)
}

func (h *RoomHandler) Room(w http.ResponseWriter, r *http.Request) {
	h.showRoom(w, r, http.StatusOK, roomPage{})
}

// PostMessage appends a message and redirects back to the room, so that reloading does not post it twice
func (h *RoomHandler) PostMessage(w http.ResponseWriter, r *http.Request) {
	roomID := mux.Vars(r)["id"]

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Error parsing form", http.StatusBadRequest)
		return
	}
	body := r.FormValue("body")

	_, err := h.roomService.PostMessage(r.Context(), middleware.CurrentUser(r), roomID, body)
	var verr *service.ValidationError
	if errors.As(err, &verr) {
		h.showRoom(w, r, http.StatusBadRequest, roomPage{Body: body, Error: "A message can not be empty."})
		return
	}
	if err != nil {
		h.fail(w, r, err)
		return
	}
	http.Redirect(w, r, "/room/"+roomID, http.StatusSeeOther)
}

func (h *RoomHandler) showRoom(w http.ResponseWriter, r *http.Request, status int, page roomPage) {
	detail, err := h.roomService.GetRoom(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.fail(w, r, err)
		return
	}
	page.Detail = detail
	h.render(w, r, status, "room.html", detail.Room.Name, page)
}

func (h *RoomHandler) CreateRoom(w http.ResponseWriter, r *http.Request) {
	page := roomFormPage{Action: "/create-room", Cancel: backLink(r, "/")}

	if r.Method == http.MethodGet {
		h.showForm(w, r, http.StatusOK, page)
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Error occurred while parsing the form", http.StatusBadRequest)
		return
	}
	page.Form = roomFormFrom(r)

	if _, err := h.roomService.CreateRoom(r.Context(), middleware.CurrentUser(r), page.Form); err != nil {
		h.formFailed(w, r, page, err)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *RoomHandler) UpdateRoom(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	page := roomFormPage{Action: "/update-room/" + id, Cancel: "/room/" + id, Editing: true}
	user := middleware.CurrentUser(r)

	if r.Method == http.MethodGet {
		room, err := h.roomService.GetOwnedRoom(r.Context(), user, id)
		if err != nil {
			h.fail(w, r, err)
			return
		}
		page.Form = service.RoomFormOf(room)
		h.showForm(w, r, http.StatusOK, page)
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Error occurred while parsing the form", http.StatusBadRequest)
		return
	}
	page.Form = roomFormFrom(r)

	if _, err := h.roomService.UpdateRoom(r.Context(), user, id, page.Form); err != nil {
		h.formFailed(w, r, page, err)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *RoomHandler) DeleteRoom(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	user := middleware.CurrentUser(r)

	if r.Method == http.MethodPost {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Error occurred while parsing the form", http.StatusBadRequest)
			return
		}
		if pending, ok := h.takePending(w, r, service.KindRoom, id, r.FormValue("token")); ok {
			if err := h.roomService.DeleteRoom(r.Context(), user, pending); err != nil {
				h.fail(w, r, err)
				return
			}
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}
		// No matching confirmation, ask again
	}

	pending, err := h.roomService.PrepareRoomDeletion(r.Context(), user, id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.confirm(w, r, pending, "/delete-room/"+id, "/room/"+id)
}

// confirm keeps pending in the session and shows the confirmation page. A POST that got here had no valid confirmation.
func (p *pages) confirm(w http.ResponseWriter, r *http.Request, pending *service.PendingConfirmation, action, cancel string) {
	if err := p.keepPending(w, r, pending); err != nil {
		p.fail(w, r, err)
		return
	}
	status := http.StatusOK
	if r.Method == http.MethodPost {
		status = http.StatusBadRequest
	}
	p.render(w, r, status, "delete.html", "Delete", deletePage{Pending: pending, Action: action, Cancel: cancel})
}

func (h *RoomHandler) showForm(w http.ResponseWriter, r *http.Request, status int, page roomFormPage) {
	topics, err := h.listingService.Topics(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	page.Topics = topics

	title := "Create room"
	if page.Editing {
		title = "Edit room"
	}
	h.render(w, r, status, "room_form.html", title, page)
}

// formFailed shows the form again with the submitted values when they were invalid
func (h *RoomHandler) formFailed(w http.ResponseWriter, r *http.Request, page roomFormPage, err error) {
	var verr *service.ValidationError
	if !errors.As(err, &verr) {
		h.fail(w, r, err)
		return
	}
	page.Errors = verr.Fields
	h.showForm(w, r, http.StatusBadRequest, page)
}

func roomFormFrom(r *http.Request) service.RoomForm {
	return service.RoomForm{
		Topic:       r.FormValue("topic"),
		Name:        r.FormValue("name"),
		Description: r.FormValue("description"),
	}
}
