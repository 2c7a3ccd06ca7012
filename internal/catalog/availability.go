// Copyright (c) 2026 Edura. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package catalog

import "github.com/taibuivan/edura/pkg/slice"

// # Availability Filter

// EnrolledIDs indexes enrollments by course id.
func EnrolledIDs(enrollments []Enrollment) map[int64]struct{} {
	owned := make(map[int64]struct{}, len(enrollments))
	for _, enrollment := range enrollments {
		owned[enrollment.CourseID] = struct{}{}
	}
	return owned
}

/*
Available returns the active courses the viewer can still buy.

It is the set difference "active courses" minus "courses the viewer is enrolled
in". Enrollment only has meaning for an authenticated viewer, so an anonymous
viewer sees every active course. Input order is preserved.
*/
func Available(courses []Course, enrollments []Enrollment, authenticated bool) []Course {
	active := slice.Filter(courses, func(course Course) bool { return course.IsActive })
	if !authenticated || len(enrollments) == 0 {
		return active
	}

	owned := EnrolledIDs(enrollments)
	return slice.Filter(active, func(course Course) bool {
		_, enrolled := owned[course.ID]
		return !enrolled
	})
}

// IsOwned reports whether courseID appears among enrollments.
func IsOwned(courseID int64, enrollments []Enrollment) bool {
	_, owned := EnrolledIDs(enrollments)[courseID]
	return owned
}
