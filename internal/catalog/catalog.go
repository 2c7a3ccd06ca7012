// Copyright (c) 2026 Edura. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package catalog models the course catalogue: courses, categories, lessons and the
enrollments that mark a course as owned.

# Pricing

A course's payable price is derived from its base price and discount percentage
unless the backend already supplies it (see [Course.EffectivePrice]).

# Availability

A course is available to buy for a viewer if and only if the viewer has no
enrollment for it (see [Available]).
*/
package catalog

import (
	"bytes"
	"encoding/json"
	"math"
	"time"

	"github.com/taibuivan/edura/internal/money"
)

// Course is the central aggregate of the catalogue.
//
// Numeric and time fields decode leniently: a malformed value from the backend
// becomes zero.
type Course struct {
	ID           int64  `json:"id"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	CategoryID   int64  `json:"category_id"`
	CategoryName string `json:"category_name,omitempty"`
	InstructorID int64  `json:"instructor_id,omitempty"`

	// # Pricing
	Price              money.Amount  `json:"price"`
	DiscountPercentage money.Amount  `json:"discount_percentage"`
	DiscountedPrice    *money.Amount `json:"discounted_price,omitempty"` // nil when the backend leaves it to the client.

	IsActive    bool         `json:"is_active"`
	Rating      money.Amount `json:"rating"`
	RatingCount int          `json:"rating_count"`
	Thumbnail   string       `json:"thumbnail,omitempty"` // Server-relative path.
	CreatedAt   time.Time    `json:"created_at"`
}

// UnmarshalJSON decodes a course. A rating count that is not a non-negative
// number becomes 0 (fractions are truncated), a creation time that does not
// parse becomes the zero time, and a malformed or negative discounted price is
// treated as not supplied.
func (c *Course) UnmarshalJSON(data []byte) error {
	type plain Course
	wire := struct {
		*plain
		DiscountedPrice json.RawMessage `json:"discounted_price"`
		RatingCount     json.RawMessage `json:"rating_count"`
		CreatedAt       json.RawMessage `json:"created_at"`
	}{plain: (*plain)(c)}

	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}

	c.DiscountedPrice = SuppliedPrice(wire.DiscountedPrice)
	c.RatingCount = parseCount(wire.RatingCount)
	c.CreatedAt = parseTime(wire.CreatedAt)
	return nil
}

// SuppliedPrice decodes an optional backend price. Null, missing, malformed
// and negative values are all absent.
func SuppliedPrice(data json.RawMessage) *money.Amount {
	price := money.ParseOptional(data)
	if price == nil || *price < 0 {
		return nil
	}
	return price
}

// parseCount coerces a raw JSON token into a count.
func parseCount(data json.RawMessage) int {
	value := money.Parse(data).Float()
	if value < 0 || value > math.MaxInt32 {
		return 0
	}
	return int(value)
}

// timeLayouts are tried in order when decoding timestamps.
var timeLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02 15:04:05", time.DateOnly}

// parseTime coerces a raw JSON token into a time, or the zero time.
func parseTime(data json.RawMessage) time.Time {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '"' {
		return time.Time{}
	}

	var text string
	if err := json.Unmarshal(trimmed, &text); err != nil {
		return time.Time{}
	}

	for _, layout := range timeLayouts {
		if parsed, err := time.Parse(layout, text); err == nil {
			return parsed
		}
	}
	return time.Time{}
}

// CourseDetails is a course together with its lessons.
type CourseDetails struct {
	Course
	Lessons []Lesson `json:"lessons"`
}

// UnmarshalJSON decodes the embedded course leniently and then the lessons.
func (d *CourseDetails) UnmarshalJSON(data []byte) error {
	if err := d.Course.UnmarshalJSON(data); err != nil {
		return err
	}

	var wire struct {
		Lessons []Lesson `json:"lessons"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	d.Lessons = wire.Lessons
	return nil
}

// Category groups courses.
type Category struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description,omitempty"`
}

// Lesson is one unit of a course.
type Lesson struct {
	ID          int64  `json:"id"`
	CourseID    int64  `json:"course_id"`
	Title       string `json:"title"`
	Content     string `json:"content,omitempty"`
	VideoURL    string `json:"video_url,omitempty"`
	MaterialURL string `json:"material_url,omitempty"`
	Position    int    `json:"position"`
	IsPreview   bool   `json:"is_preview"`
}

// Enrollment is proof that a user owns a course. It is created server-side after
// payment and is read-only for the client.
type Enrollment struct {
	ID         int64     `json:"id"`
	UserID     int64     `json:"user_id"`
	CourseID   int64     `json:"course_id"`
	EnrolledAt time.Time `json:"enrolled_at"`
	Course     *Course   `json:"course,omitempty"`
}

// # Inputs

// CourseInput is the payload of course create and update operations.
type CourseInput struct {
	Title              string       `json:"title"`
	Description        string       `json:"description"`
	CategoryID         int64        `json:"category_id"`
	Price              money.Amount `json:"price"`
	DiscountPercentage money.Amount `json:"discount_percentage"`
	IsActive           bool         `json:"is_active"`
	Thumbnail          string       `json:"thumbnail,omitempty"`
}

// CategoryInput is the payload of category create and update operations.
type CategoryInput struct {
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description,omitempty"`
}
