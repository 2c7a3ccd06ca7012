// Copyright (c) 2026 Edura. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sandbox

import (
	"slices"
	"time"

	"github.com/taibuivan/edura/internal/catalog"
	"github.com/taibuivan/edura/internal/platform/apperr"
)

// # Categories

// Categories lists every category.
func (store *Store) Categories() []catalog.Category {
	store.mu.Lock()
	defer store.mu.Unlock()
	return sortedValues(store.categories)
}

// SaveCategory creates (id 0) or replaces a category. Slugs are unique.
func (store *Store) SaveCategory(id int64, input catalog.CategoryInput) (catalog.Category, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	if id != 0 {
		if _, ok := store.categories[id]; !ok {
			return catalog.Category{}, apperr.NotFound("Category")
		}
	}

	for _, existing := range store.categories {
		if existing.Slug == input.Slug && existing.ID != id {
			return catalog.Category{}, apperr.Conflict("Category slug is already in use")
		}
	}

	if id == 0 {
		id = store.id()
	}
	category := catalog.Category{ID: id, Name: input.Name, Slug: input.Slug, Description: input.Description}
	store.categories[id] = category

	return category, nil
}

// DeleteCategory removes a category that no course uses.
func (store *Store) DeleteCategory(id int64) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	if _, ok := store.categories[id]; !ok {
		return apperr.NotFound("Category")
	}
	for _, course := range store.courses {
		if course.CategoryID == id {
			return apperr.Conflict("Category still has courses")
		}
	}

	delete(store.categories, id)
	return nil
}

// # Courses

// Courses lists every course.
func (store *Store) Courses() []catalog.Course {
	store.mu.Lock()
	defer store.mu.Unlock()
	return sortedValues(store.courses)
}

// Course returns one course.
func (store *Store) Course(id int64) (catalog.Course, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	course, ok := store.courses[id]
	if !ok {
		return catalog.Course{}, apperr.NotFound("Course")
	}
	return course, nil
}

// SaveCourse creates (id 0) or replaces a course.
func (store *Store) SaveCourse(id, instructorID int64, input catalog.CourseInput) (catalog.Course, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	category, ok := store.categories[input.CategoryID]
	if !ok {
		return catalog.Course{}, apperr.NotFound("Category")
	}

	course := catalog.Course{InstructorID: instructorID, CreatedAt: time.Now().UTC()}
	if id != 0 {
		existing, ok := store.courses[id]
		if !ok {
			return catalog.Course{}, apperr.NotFound("Course")
		}
		course = existing
	} else {
		course.ID = store.id()
	}

	course.Title = input.Title
	course.Description = input.Description
	course.CategoryID = category.ID
	course.CategoryName = category.Name
	course.Price = input.Price
	course.DiscountPercentage = input.DiscountPercentage
	course.IsActive = input.IsActive
	if input.Thumbnail != "" {
		course.Thumbnail = input.Thumbnail
	}

	store.courses[course.ID] = course
	return course, nil
}

// DeleteCourse removes a course and its lessons. Courses someone owns are kept.
func (store *Store) DeleteCourse(id int64) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	if _, ok := store.courses[id]; !ok {
		return apperr.NotFound("Course")
	}
	for _, enrollment := range store.enrollments {
		if enrollment.CourseID == id {
			return apperr.Conflict("Course has enrolled students; deactivate it instead")
		}
	}

	delete(store.courses, id)
	for lessonID, lesson := range store.lessons {
		if lesson.CourseID == id {
			delete(store.lessons, lessonID)
		}
	}
	return nil
}

// # Lessons

// SaveLesson stores a lesson.
func (store *Store) SaveLesson(lesson catalog.Lesson) catalog.Lesson {
	store.mu.Lock()
	defer store.mu.Unlock()

	if lesson.ID == 0 {
		lesson.ID = store.id()
	}
	store.lessons[lesson.ID] = lesson
	return lesson
}

// Lessons lists the lessons of a course ordered by position.
func (store *Store) Lessons(courseID int64) ([]catalog.Lesson, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	if _, ok := store.courses[courseID]; !ok {
		return nil, apperr.NotFound("Course")
	}

	lessons := []catalog.Lesson{}
	for _, lesson := range sortedValues(store.lessons) {
		if lesson.CourseID == courseID {
			lessons = append(lessons, lesson)
		}
	}
	slices.SortStableFunc(lessons, func(a, b catalog.Lesson) int { return a.Position - b.Position })

	return lessons, nil
}
