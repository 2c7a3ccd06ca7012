// Copyright (c) 2026 Edura. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sandbox

import (
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"

	"github.com/taibuivan/edura/internal/api"
	"github.com/taibuivan/edura/internal/platform/apperr"
	"github.com/taibuivan/edura/internal/platform/constants"
	"github.com/taibuivan/edura/internal/platform/respond"
	"github.com/taibuivan/edura/internal/platform/sec"
	"github.com/taibuivan/edura/internal/platform/validate"
	requestutil "github.com/taibuivan/edura/internal/platform/request"
	"github.com/taibuivan/edura/internal/session"
	"github.com/taibuivan/edura/pkg/pagination"
	"github.com/taibuivan/edura/pkg/uuid"
)

// maxAvatarBytes caps avatar uploads.
const maxAvatarBytes = 2 << 20

// listUsers handles GET /users?page=&limit=.
func (handler *Handler) listUsers(writer http.ResponseWriter, request *http.Request) {
	params := pagination.FromRequest(request)
	users := handler.store.Users()

	start, end := params.Window(len(users))

	respond.Paginated(writer, users[start:end], pagination.NewMeta(params.Page, params.Limit, len(users)))
}

// authorizeUser resolves the {id} parameter for a caller that is that user or an admin.
func authorizeUser(request *http.Request) (int64, *sec.AuthClaims, error) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		return 0, nil, err
	}

	id, err := requestutil.ID(request, "id")
	if err != nil {
		return 0, nil, err
	}

	if id != claims.UserID && claims.Role != sec.RoleAdmin {
		return 0, nil, apperr.Forbidden("You can only manage your own profile")
	}
	return id, claims, nil
}

// getUser handles GET /users/{id}.
func (handler *Handler) getUser(writer http.ResponseWriter, request *http.Request) {
	id, _, err := authorizeUser(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.store.User(id)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, user)
}

// updateUser handles PUT /users/{id}. Only admins may change a role.
func (handler *Handler) updateUser(writer http.ResponseWriter, request *http.Request) {
	id, claims, err := authorizeUser(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var update api.UserUpdate
	if err := requestutil.DecodeJSON(writer, request, &update); err != nil {
		respond.Error(writer, request, err)
		return
	}
	if err := update.Validate(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.store.UpdateUser(id, func(user *session.User) error {
		if update.Role != "" && update.Role != user.Role {
			if claims.Role != sec.RoleAdmin {
				return apperr.Forbidden("Only administrators can change roles")
			}
			user.Role = update.Role
		}
		user.FullName = strings.TrimSpace(update.FullName)
		user.Email = update.Email
		return nil
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, user)
}

// uploadAvatar handles PATCH /users/{id}/avatar with a multipart "avatar" file.
//
// # Returns
//   - 200 with the updated profile; its avatar is a server-relative path.
//   - 400 if the file is missing or is not an image.
func (handler *Handler) uploadAvatar(writer http.ResponseWriter, request *http.Request) {
	id, _, err := authorizeUser(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	// ── 1. Payload Extraction ─────────────────────────────────────────────
	request.Body = http.MaxBytesReader(writer, request.Body, maxAvatarBytes+1024)
	file, header, err := request.FormFile("avatar")
	if err != nil {
		respond.Error(writer, request, validate.RequiredError("avatar", "An image file is required"))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxAvatarBytes+1))
	if err != nil || len(data) > maxAvatarBytes {
		respond.Error(writer, request, validate.RequiredError("avatar", "Image must be at most 2MB"))
		return
	}

	contentType := http.DetectContentType(data)
	if !strings.HasPrefix(contentType, "image/") {
		respond.Error(writer, request, validate.RequiredError("avatar", "File must be an image"))
		return
	}

	// ── 2. Persistence ────────────────────────────────────────────────────
	storedPath := fmt.Sprintf("%s/avatars/%d-%s%s", constants.PathUploads, id, uuid.New(), strings.ToLower(path.Ext(header.Filename)))
	handler.store.SaveUpload(storedPath, contentType, data)

	user, err := handler.store.UpdateUser(id, func(user *session.User) error {
		user.Avatar = storedPath
		return nil
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, user)
}

// serveUpload handles GET /uploads/*.
func (handler *Handler) serveUpload(writer http.ResponseWriter, request *http.Request) {
	stored, ok := handler.store.Upload(path.Clean(request.URL.Path))
	if !ok {
		respond.Error(writer, request, apperr.NotFound("File"))
		return
	}

	writer.Header().Set(constants.HeaderContentType, stored.ContentType)
	writer.Header().Set("Cache-Control", "public, max-age=86400")
	_, _ = writer.Write(stored.Data)
}
