// Copyright (c) 2026 Edura. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package api

import (
	"context"
	"net/http"

	"golang.org/x/sync/errgroup"

	"github.com/taibuivan/edura/internal/catalog"
	"github.com/taibuivan/edura/internal/platform/constants"
	"github.com/taibuivan/edura/internal/transport"
)

// # Courses

// CourseService covers /courses.
type CourseService struct {
	transport   *transport.Client
	enrollments *EnrollmentService
}

// List returns every course the backend exposes.
func (service *CourseService) List(ctx context.Context) ([]catalog.Course, error) {
	courses := []catalog.Course{}
	if err := get(ctx, service.transport, constants.PathCourses, &courses); err != nil {
		return nil, err
	}
	return courses, nil
}

// Available returns the active courses the viewer does not own yet. Courses and
// enrollments are fetched concurrently; anonymous viewers skip the enrollment fetch.
func (service *CourseService) Available(ctx context.Context, authenticated bool) ([]catalog.Course, error) {
	var courses []catalog.Course
	var enrollments []catalog.Enrollment

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		var err error
		courses, err = service.List(groupCtx)
		return err
	})
	if authenticated {
		group.Go(func() error {
			var err error
			enrollments, err = service.enrollments.List(groupCtx)
			return err
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	return catalog.Available(courses, enrollments, authenticated), nil
}

// Get returns one course.
func (service *CourseService) Get(ctx context.Context, id int64) (*catalog.Course, error) {
	var course catalog.Course
	if err := get(ctx, service.transport, resourcePath(constants.PathCourses, id), &course); err != nil {
		return nil, err
	}
	return &course, nil
}

// Details returns a course together with its lessons.
func (service *CourseService) Details(ctx context.Context, id int64) (*catalog.CourseDetails, error) {
	var details catalog.CourseDetails
	if err := get(ctx, service.transport, resourcePath(constants.PathCourses, id, "details"), &details); err != nil {
		return nil, err
	}
	return &details, nil
}

// Create adds a course (admin only). The input is validated locally first.
func (service *CourseService) Create(ctx context.Context, input catalog.CourseInput) (*catalog.Course, error) {
	if err := catalog.ValidateCourseInput(input); err != nil {
		return nil, err
	}

	var course catalog.Course
	if err := send(ctx, service.transport, http.MethodPost, constants.PathCourses, input, &course); err != nil {
		return nil, err
	}
	return &course, nil
}

// Update replaces a course (admin only). The input is validated locally first.
func (service *CourseService) Update(ctx context.Context, id int64, input catalog.CourseInput) (*catalog.Course, error) {
	if err := catalog.ValidateCourseInput(input); err != nil {
		return nil, err
	}

	var course catalog.Course
	if err := send(ctx, service.transport, http.MethodPut, resourcePath(constants.PathCourses, id), input, &course); err != nil {
		return nil, err
	}
	return &course, nil
}

// Delete removes a course (admin only).
func (service *CourseService) Delete(ctx context.Context, id int64) error {
	return send(ctx, service.transport, http.MethodDelete, resourcePath(constants.PathCourses, id), nil, nil)
}

// # Categories

// CategoryService covers /categories.
type CategoryService struct {
	transport *transport.Client
}

// List returns every category.
func (service *CategoryService) List(ctx context.Context) ([]catalog.Category, error) {
	categories := []catalog.Category{}
	if err := get(ctx, service.transport, constants.PathCategories, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

// Create adds a category. An empty slug is derived from the name.
func (service *CategoryService) Create(ctx context.Context, input catalog.CategoryInput) (*catalog.Category, error) {
	input = catalog.NormalizeCategoryInput(input)
	if err := catalog.ValidateCategoryInput(input); err != nil {
		return nil, err
	}

	var category catalog.Category
	if err := send(ctx, service.transport, http.MethodPost, constants.PathCategories, input, &category); err != nil {
		return nil, err
	}
	return &category, nil
}

// Update replaces a category.
func (service *CategoryService) Update(ctx context.Context, id int64, input catalog.CategoryInput) (*catalog.Category, error) {
	input = catalog.NormalizeCategoryInput(input)
	if err := catalog.ValidateCategoryInput(input); err != nil {
		return nil, err
	}

	var category catalog.Category
	if err := send(ctx, service.transport, http.MethodPut, resourcePath(constants.PathCategories, id), input, &category); err != nil {
		return nil, err
	}
	return &category, nil
}

// Delete removes a category.
func (service *CategoryService) Delete(ctx context.Context, id int64) error {
	return send(ctx, service.transport, http.MethodDelete, resourcePath(constants.PathCategories, id), nil, nil)
}

// # Lessons

// LessonService covers lesson reads.
type LessonService struct {
	transport *transport.Client
}

// ListByCourse returns the lessons of a course ordered by position.
func (service *LessonService) ListByCourse(ctx context.Context, courseID int64) ([]catalog.Lesson, error) {
	lessons := []catalog.Lesson{}
	if err := get(ctx, service.transport, resourcePath(constants.PathCourses, courseID, "lessons"), &lessons); err != nil {
		return nil, err
	}
	return lessons, nil
}
