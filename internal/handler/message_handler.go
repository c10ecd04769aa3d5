/*
 * Copyright (c) 2026 Francesco Biribo'
 *
 * Permission to use, copy, modify, and distribute this software for any purpose with or without fee is hereby granted, provided that the above copyright notice and this permission notice appear in all copies.
 *
 * THE SOFTWARE IS PROVIDED "AS IS" AND THE AUTHOR DISCLAIMS ALL WARRANTIES WITH REGARD TO THIS SOFTWARE INCLUDING ALL IMPLIED WARRANTIES OF MERCHANTABILITY AND FITNESS. IN NO EVENT SHALL THE AUTHOR BE LIABLE FOR ANY SPECIAL, DIRECT, INDIRECT, OR CONSEQUENTIAL DAMAGES OR ANY DAMAGES WHATSOEVER RESULTING FROM LOSS OF USE, DATA OR PROFITS, WHETHER IN AN ACTION OF CONTRACT, NEGLIGENCE OR OTHER TORTIOUS ACTION, ARISING OUT OF OR IN CONNECTION WITH THE USE OR PERFORMANCE OF THIS SOFTWARE.
 */

package handler

import (
	"net/http"

	"studybud/internal/middleware"
	"studybud/internal/nlog"
	"studybud/internal/service"
	"studybud/internal/view"

	"github.com/gorilla/mux"
	"github.com/gorilla/sessions"
)

type MessageHandler struct {
	pages
	messageService service.MessageService
}

func NewMessageHandler(messageService service.MessageService, cookieStore sessions.Store, renderer *view.PageRenderer, logger nlog.Logger) *MessageHandler {
	return &MessageHandler{
		pages:          pages{cookieStore: cookieStore, renderer: renderer, logger: logger},
		messageService: messageService,
	}
}

func (h *MessageHandler) DeleteMessage(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	user := middleware.CurrentUser(r)

	if r.Method == http.MethodPost {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Error occurred while parsing the form", http.StatusBadRequest)
			return
		}
		if pending, ok := h.takePending(w, r, service.KindMessage, id, r.FormValue("token")); ok {
			if err := h.messageService.DeleteMessage(r.Context(), user, pending); err != nil {
				h.fail(w, r, err)
				return
			}
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}
	}

	pending, err := h.messageService.PrepareMessageDeletion(r.Context(), user, id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.confirm(w, r, pending, "/delete-message/"+id, backLink(r, "/"))
}
