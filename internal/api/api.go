// Copyright (c) 2026 Edura. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package api is the typed client of the Edura backend REST contract.

# Architecture

Each resource group is a small service over the shared [transport.Client], which
owns the bearer token, the silent refresh and error decoding. Services validate
their inputs with the same rules the backend applies, so validation failures
never reach the network. Login and logout also drive the [authstate.Synchronizer]
so every subscriber sees the transition.
*/
package api

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/taibuivan/edura/internal/authstate"
	"github.com/taibuivan/edura/internal/session"
	"github.com/taibuivan/edura/internal/transport"
)

// Client groups every resource service.
type Client struct {
	Auth        *AuthService
	Courses     *CourseService
	Categories  *CategoryService
	Lessons     *LessonService
	Cart        *CartService
	Enrollments *EnrollmentService
	Payments    *PaymentService
	Users       *UserService

	transport *transport.Client
}

// New builds the resource services on top of a guarded transport.
func New(transportClient *transport.Client, sessions *session.Manager, synchronizer *authstate.Synchronizer, logger *slog.Logger) *Client {
	client := &Client{transport: transportClient}

	client.Auth = &AuthService{transport: transportClient, sessions: sessions, synchronizer: synchronizer, logger: logger}
	client.Courses = &CourseService{transport: transportClient}
	client.Categories = &CategoryService{transport: transportClient}
	client.Lessons = &LessonService{transport: transportClient}
	client.Enrollments = &EnrollmentService{transport: transportClient}
	client.Cart = &CartService{transport: transportClient, enrollments: client.Enrollments}
	client.Courses.enrollments = client.Enrollments
	client.Payments = &PaymentService{transport: transportClient}
	client.Users = &UserService{transport: transportClient, synchronizer: synchronizer}

	return client
}

// AssetURL turns a server-relative thumbnail or avatar path into an absolute URL
// on the backend origin. Absolute URLs and empty paths are returned unchanged.
func (client *Client) AssetURL(path string) string {
	if path == "" || strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	return client.transport.BaseURL().JoinPath(path).String()
}

// # Request Helpers

// resourcePath joins a collection path and an id, e.g. "/courses/42".
func resourcePath(collection string, id int64, suffix ...string) string {
	parts := append([]string{collection, strconv.FormatInt(id, 10)}, suffix...)
	return strings.Join(parts, "/")
}

// get decodes a GET response into out.
func get(ctx context.Context, client *transport.Client, path string, out any) error {
	return client.Do(ctx, transport.Request{Method: http.MethodGet, Path: path}, out)
}

// send issues a write with a JSON body and decodes the response into out.
func send(ctx context.Context, client *transport.Client, method, path string, body, out any) error {
	return client.Do(ctx, transport.Request{Method: method, Path: path, Body: body}, out)
}
