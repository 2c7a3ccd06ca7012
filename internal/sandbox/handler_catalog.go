// Copyright (c) 2026 Edura. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sandbox

import (
	"net/http"

	"github.com/taibuivan/edura/internal/catalog"
	"github.com/taibuivan/edura/internal/platform/apperr"
	"github.com/taibuivan/edura/internal/platform/ctxutil"
	"github.com/taibuivan/edura/internal/platform/respond"
	"github.com/taibuivan/edura/internal/platform/sec"
	requestutil "github.com/taibuivan/edura/internal/platform/request"
	"github.com/taibuivan/edura/pkg/slice"
)

// # Categories

// listCategories handles GET /categories.
func (handler *Handler) listCategories(writer http.ResponseWriter, request *http.Request) {
	respond.OK(writer, handler.store.Categories())
}

// createCategory handles POST /categories.
func (handler *Handler) createCategory(writer http.ResponseWriter, request *http.Request) {
	handler.saveCategory(writer, request, 0)
}

// updateCategory handles PUT /categories/{id}.
func (handler *Handler) updateCategory(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.ID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	handler.saveCategory(writer, request, id)
}

func (handler *Handler) saveCategory(writer http.ResponseWriter, request *http.Request, id int64) {
	var input catalog.CategoryInput
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	input = catalog.NormalizeCategoryInput(input)
	if err := catalog.ValidateCategoryInput(input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	category, err := handler.store.SaveCategory(id, input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if id == 0 {
		respond.Created(writer, category)
		return
	}
	respond.OK(writer, category)
}

// deleteCategory handles DELETE /categories/{id}.
func (handler *Handler) deleteCategory(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.ID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.store.DeleteCategory(id); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

// # Courses

// canSeeInactive reports whether the caller may see unpublished courses.
func canSeeInactive(request *http.Request) bool {
	claims := ctxutil.GetAuthUser(request.Context())
	return claims != nil && claims.Role.AtLeast(sec.RoleInstructor)
}

// listCourses handles GET /courses.
//
// Anonymous users and students only see active courses.
func (handler *Handler) listCourses(writer http.ResponseWriter, request *http.Request) {
	courses := handler.store.Courses()
	if !canSeeInactive(request) {
		courses = slice.Filter(courses, func(course catalog.Course) bool { return course.IsActive })
	}
	respond.OK(writer, courses)
}

// visibleCourse loads a course, hiding inactive ones from non-staff callers.
func (handler *Handler) visibleCourse(request *http.Request) (catalog.Course, error) {
	id, err := requestutil.ID(request, "id")
	if err != nil {
		return catalog.Course{}, err
	}

	course, err := handler.store.Course(id)
	if err != nil {
		return catalog.Course{}, err
	}
	if !course.IsActive && !canSeeInactive(request) {
		return catalog.Course{}, apperr.NotFound("Course")
	}
	return course, nil
}

// getCourse handles GET /courses/{id}.
func (handler *Handler) getCourse(writer http.ResponseWriter, request *http.Request) {
	course, err := handler.visibleCourse(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, course)
}

// getCourseDetails handles GET /courses/{id}/details.
func (handler *Handler) getCourseDetails(writer http.ResponseWriter, request *http.Request) {
	course, err := handler.visibleCourse(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	lessons, err := handler.store.Lessons(course.ID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, catalog.CourseDetails{Course: course, Lessons: lessons})
}

// listLessons handles GET /courses/{id}/lessons.
func (handler *Handler) listLessons(writer http.ResponseWriter, request *http.Request) {
	course, err := handler.visibleCourse(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	lessons, err := handler.store.Lessons(course.ID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, lessons)
}

// createCourse handles POST /courses. The caller becomes the instructor.
func (handler *Handler) createCourse(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input catalog.CourseInput
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}
	if err := catalog.ValidateCourseInput(input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	course, err := handler.store.SaveCourse(0, claims.UserID, input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, course)
}

// authorizeCourseWrite loads a course the caller may edit: admins edit any
// course, instructors only their own.
func (handler *Handler) authorizeCourseWrite(request *http.Request) (catalog.Course, error) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		return catalog.Course{}, err
	}

	id, err := requestutil.ID(request, "id")
	if err != nil {
		return catalog.Course{}, err
	}

	course, err := handler.store.Course(id)
	if err != nil {
		return catalog.Course{}, err
	}

	if claims.Role != sec.RoleAdmin && course.InstructorID != claims.UserID {
		return catalog.Course{}, apperr.Forbidden("You can only manage your own courses")
	}
	return course, nil
}

// updateCourse handles PUT /courses/{id}.
func (handler *Handler) updateCourse(writer http.ResponseWriter, request *http.Request) {
	existing, err := handler.authorizeCourseWrite(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input catalog.CourseInput
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}
	if err := catalog.ValidateCourseInput(input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	course, err := handler.store.SaveCourse(existing.ID, existing.InstructorID, input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, course)
}

// deleteCourse handles DELETE /courses/{id}.
func (handler *Handler) deleteCourse(writer http.ResponseWriter, request *http.Request) {
	existing, err := handler.authorizeCourseWrite(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.store.DeleteCourse(existing.ID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}
