// Copyright (c) 2026 Edura. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package metrics declares the Prometheus collectors of the client transport and
the sandbox server.

Collectors are registered on the [prometheus.Registerer] handed to the
constructor, never on a package-level global, so tests can use a private
registry and assert on values with prometheus/testutil.
*/
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "edura"

// Refresh outcomes.
const (
	RefreshSuccess = "success"
	RefreshFailure = "failure"
	RefreshSkipped = "skipped"
)

// # Client Metrics

// Client holds the outbound transport collectors.
type Client struct {
	Requests    *prometheus.CounterVec
	Refreshes   *prometheus.CounterVec
	Expirations prometheus.Counter
}

// NewClient creates and registers the transport collectors.
func NewClient(registerer prometheus.Registerer) *Client {
	client := &Client{
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "client",
			Name:      "requests_total",
			Help:      "Outbound API requests by method and response status.",
		}, []string{"method", "status"}),
		Refreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "client",
			Name:      "token_refresh_total",
			Help:      "Access token refresh attempts by outcome.",
		}, []string{"result"}),
		Expirations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "client",
			Name:      "session_expired_total",
			Help:      "Sessions cleared because the refresh token was rejected.",
		}),
	}

	registerer.MustRegister(client.Requests, client.Refreshes, client.Expirations)
	return client
}

// ObserveRequest counts one completed request. Status 0 means no response.
func (client *Client) ObserveRequest(method string, status int) {
	if client == nil {
		return
	}
	client.Requests.WithLabelValues(method, strconv.Itoa(status)).Inc()
}

// ObserveRefresh counts one refresh attempt.
func (client *Client) ObserveRefresh(result string) {
	if client == nil {
		return
	}
	client.Refreshes.WithLabelValues(result).Inc()
}

// ObserveExpiration counts one forced logout.
func (client *Client) ObserveExpiration() {
	if client == nil {
		return
	}
	client.Expirations.Inc()
}

// # Server Metrics

// Server holds the sandbox HTTP collectors.
type Server struct {
	Requests *prometheus.CounterVec
	Latency  *prometheus.HistogramVec
}

// NewServer creates and registers the sandbox collectors.
func NewServer(registerer prometheus.Registerer) *Server {
	server := &Server{
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sandbox",
			Name:      "http_requests_total",
			Help:      "Handled HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		Latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "sandbox",
			Name:      "http_request_duration_seconds",
			Help:      "Request latency by method and route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	registerer.MustRegister(server.Requests, server.Latency)
	return server
}

// Observe records one handled request.
func (server *Server) Observe(method, route string, status int, elapsed time.Duration) {
	if server == nil {
		return
	}
	server.Requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	server.Latency.WithLabelValues(method, route).Observe(elapsed.Seconds())
}
