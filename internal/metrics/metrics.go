/*
 * Copyright (c) 2026 Francesco Biribo'
 *
 * Permission to use, copy, modify, and distribute this software for any purpose with or without fee is hereby granted, provided that the above copyright notice and this permission notice appear in all copies.
 *
 * THE SOFTWARE IS PROVIDED "AS IS" AND THE AUTHOR DISCLAIMS ALL WARRANTIES WITH REGARD TO THIS SOFTWARE INCLUDING ALL IMPLIED WARRANTIES OF MERCHANTABILITY AND FITNESS. IN NO EVENT SHALL THE AUTHOR BE LIABLE FOR ANY SPECIAL, DIRECT, INDIRECT, OR CONSEQUENTIAL DAMAGES OR ANY DAMAGES WHATSOEVER RESULTING FROM LOSS OF USE, DATA OR PROFITS, WHETHER IN AN ACTION OF CONTRACT, NEGLIGENCE OR OTHER TORTIOUS ACTION, ARISING OUT OF OR IN CONNECTION WITH THE USE OR PERFORMANCE OF THIS SOFTWARE.
 */

package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "studybud"

// Metrics holds the collectors of the site on a registry of its own, so that several instances (tests) never clash.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	requests *prometheus.CounterVec   // HTTP requests by route, method and status code
	latency  *prometheus.HistogramVec // HTTP request duration by route and method

	roomsCreated     prometheus.Counter
	roomsUpdated     prometheus.Counter
	roomsDeleted     prometheus.Counter
	messagesPosted   prometheus.Counter
	messagesDeleted  prometheus.Counter
	registrations    prometheus.Counter
	logins           *prometheus.CounterVec // Login attempts by outcome
	forbiddenActions prometheus.Counter     // Mutations refused because the actor does not own the resource
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests served, by route, method and status code.",
		}, []string{"route", "method", "code"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Time spent serving HTTP requests.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
		roomsCreated:    counter("rooms_created_total", "Rooms created."),
		roomsUpdated:    counter("rooms_updated_total", "Rooms edited by their host."),
		roomsDeleted:    counter("rooms_deleted_total", "Rooms deleted by their host."),
		messagesPosted:  counter("messages_posted_total", "Messages posted in rooms."),
		messagesDeleted: counter("messages_deleted_total", "Messages deleted by their author."),
		registrations:   counter("registrations_total", "Accounts registered."),
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "logins_total",
			Help:      "Login attempts, by outcome.",
		}, []string{"outcome"}),
		forbiddenActions: counter("forbidden_actions_total", "Mutations refused because the actor does not own the resource."),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requests, m.latency,
		m.roomsCreated, m.roomsUpdated, m.roomsDeleted,
		m.messagesPosted, m.messagesDeleted,
		m.registrations, m.logins, m.forbiddenActions,
	)
	return m
}

func counter(name, help string) prometheus.Counter {
	return prometheus.NewCounter(prometheus.CounterOpts{Namespace: namespace, Name: name, Help: help})
}

// Registry gives access to the underlying registry, mostly for tests
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the exposition format of the registry
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) ObserveRequest(route, method string, code int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(route, method, strconv.Itoa(code)).Inc()
	m.latency.WithLabelValues(route, method).Observe(elapsed.Seconds())
}

func (m *Metrics) RoomCreated() {
	if m != nil {
		m.roomsCreated.Inc()
	}
}

func (m *Metrics) RoomUpdated() {
	if m != nil {
		m.roomsUpdated.Inc()
	}
}

func (m *Metrics) RoomDeleted() {
	if m != nil {
		m.roomsDeleted.Inc()
	}
}

func (m *Metrics) MessagePosted() {
	if m != nil {
		m.messagesPosted.Inc()
	}
}

func (m *Metrics) MessageDeleted() {
	if m != nil {
		m.messagesDeleted.Inc()
	}
}

func (m *Metrics) Registered() {
	if m != nil {
		m.registrations.Inc()
	}
}

// LoginAttempt counts a login, outcome is "success" or "failure"
func (m *Metrics) LoginAttempt(success bool) {
	if m == nil {
		return
	}
	outcome := "failure"
	if success {
		outcome = "success"
	}
	m.logins.WithLabelValues(outcome).Inc()
}

func (m *Metrics) Forbidden() {
	if m != nil {
		m.forbiddenActions.Inc()
	}
}
