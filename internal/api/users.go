// Copyright (c) 2026 Edura. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/taibuivan/edura/internal/authstate"
	"github.com/taibuivan/edura/internal/platform/apperr"
	"github.com/taibuivan/edura/internal/platform/constants"
	"github.com/taibuivan/edura/internal/platform/sec"
	"github.com/taibuivan/edura/internal/platform/validate"
	"github.com/taibuivan/edura/internal/session"
	"github.com/taibuivan/edura/internal/transport"
	"github.com/taibuivan/edura/pkg/pagination"
)

// avatarField is the multipart field carrying the avatar image.
const avatarField = "avatar"

// UserService covers /users.
type UserService struct {
	transport    *transport.Client
	synchronizer *authstate.Synchronizer
}

// UserUpdate is the body of PUT /users/:id.
type UserUpdate struct {
	FullName string       `json:"full_name"`
	Email    string       `json:"email"`
	Role     sec.UserRole `json:"role,omitempty"` // Admin only.
}

// Validate applies the profile rules.
func (update UserUpdate) Validate() error {
	validator := &validate.Validator{}
	validator.
		Required("full_name", update.FullName).
		MaxLen("full_name", update.FullName, 100).
		Email("email", update.Email)
	if update.Role != "" {
		validator.Custom("role", !update.Role.Valid(), "Must be one of: admin, instructor, student")
	}
	return validator.Err()
}

// List returns one page of users (admin only).
func (service *UserService) List(ctx context.Context, page pagination.Params) ([]session.User, error) {
	users := []session.User{}
	request := transport.Request{Method: http.MethodGet, Path: constants.PathUsers, Query: page.Query()}
	if err := service.transport.Do(ctx, request, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// Get returns one user.
func (service *UserService) Get(ctx context.Context, id int64) (*session.User, error) {
	var user session.User
	if err := get(ctx, service.transport, resourcePath(constants.PathUsers, id), &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Update edits a profile. Editing the signed-in user republishes the auth state.
func (service *UserService) Update(ctx context.Context, id int64, update UserUpdate) (*session.User, error) {
	if err := update.Validate(); err != nil {
		return nil, err
	}

	var user session.User
	if err := send(ctx, service.transport, http.MethodPut, resourcePath(constants.PathUsers, id), update, &user); err != nil {
		return nil, err
	}
	return &user, service.republish(ctx, &user)
}

// UploadAvatar replaces a user's avatar with a multipart upload.
func (service *UserService) UploadAvatar(ctx context.Context, id int64, filename string, content io.Reader) (*session.User, error) {
	if filename == "" {
		return nil, validate.RequiredError(avatarField, "A file name is required")
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile(avatarField, filename)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("api_build_multipart_failed: %w", err))
	}
	if _, err := io.Copy(part, content); err != nil {
		return nil, apperr.Internal(fmt.Errorf("api_read_avatar_failed: %w", err))
	}
	if err := writer.Close(); err != nil {
		return nil, apperr.Internal(fmt.Errorf("api_build_multipart_failed: %w", err))
	}

	var user session.User
	err = service.transport.Do(ctx, transport.Request{
		Method:      http.MethodPatch,
		Path:        resourcePath(constants.PathUsers, id, avatarField),
		RawBody:     body.Bytes(),
		ContentType: writer.FormDataContentType(),
	}, &user)
	if err != nil {
		return nil, err
	}
	return &user, service.republish(ctx, &user)
}

// republish pushes a changed profile of the signed-in user to every subscriber.
func (service *UserService) republish(ctx context.Context, user *session.User) error {
	current := service.synchronizer.Snapshot()
	if !current.IsAuthenticated || current.User == nil || current.User.ID != user.ID {
		return nil
	}
	return service.synchronizer.SetAuth(ctx, true, user)
}
