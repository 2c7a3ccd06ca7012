// Copyright (c) 2026 Edura. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package catalog_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/edura/internal/catalog"
	"github.com/taibuivan/edura/internal/money"
	"github.com/taibuivan/edura/internal/platform/apperr"
	"github.com/taibuivan/edura/pkg/pointer"
)

/*
TestDiscountedPrice covers the pricing rule and its clamping of coerced values.
*/
func TestDiscountedPrice(t *testing.T) {
	tests := []struct {
		name string
		base money.Amount
		pct  money.Amount
		want money.Amount
	}{
		{"twenty percent", 100000, 20, 80000},
		{"no discount", 100000, 0, 100000},
		{"negative treated as none", 100000, -5, 100000},
		{"over one hundred clamps to free", 100000, 150, 0},
		{"full discount", 50000, 100, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want.Float(), catalog.DiscountedPrice(tt.base, tt.pct).Float(), 1e-6)
		})
	}
}

/*
TestCourse_EffectivePrice prefers the backend-supplied discounted price.
*/
func TestCourse_EffectivePrice(t *testing.T) {
	course := catalog.Course{Price: 200000, DiscountPercentage: 10}
	assert.InDelta(t, 180000.0, course.EffectivePrice().Float(), 1e-6)

	course.DiscountedPrice = pointer.To(money.Amount(175000))
	assert.Equal(t, money.Amount(175000), course.EffectivePrice())
}

/*
TestCourse_PriceView shows both prices only while a discount applies.
*/
func TestCourse_PriceView(t *testing.T) {
	discounted := catalog.Course{Price: 100000, DiscountPercentage: 20}
	view := discounted.PriceView()
	assert.True(t, view.HasDiscount)
	assert.Equal(t, money.Amount(100000), view.Original)
	assert.InDelta(t, 80000.0, view.Final.Float(), 1e-6)

	full := catalog.Course{Price: 100000}
	view = full.PriceView()
	assert.False(t, view.HasDiscount)
	assert.Equal(t, view.Original, view.Final)

	formatter := money.NewFormatter("VND", "vi")
	assert.Contains(t, discounted.PriceView().Render(formatter), "-20%")
	assert.NotContains(t, full.PriceView().Render(formatter), "%")
}

/*
TestCourse_PriceViewUsesEffectivePrice shows a backend-supplied lower price as
the final price even when no percentage is set.
*/
func TestCourse_PriceViewUsesEffectivePrice(t *testing.T) {
	course := catalog.Course{Price: 100000, DiscountedPrice: pointer.To(money.Amount(70000))}

	view := course.PriceView()
	assert.False(t, view.HasDiscount)
	assert.Equal(t, money.Amount(100000), view.Original)
	assert.Equal(t, course.EffectivePrice(), view.Final)
	assert.Equal(t, money.Amount(70000), view.Final)
}

/*
TestCourse_SuppliedPriceDecoding keeps a real zero but drops a malformed or
negative discounted price.
*/
func TestCourse_SuppliedPriceDecoding(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want *money.Amount
	}{
		{"number", `70000`, pointer.To(money.Amount(70000))},
		{"numeric string", `"70000"`, pointer.To(money.Amount(70000))},
		{"full discount", `0`, pointer.To(money.Amount(0))},
		{"garbage", `"abc"`, nil},
		{"negative", `-5`, nil},
		{"null", `null`, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var course catalog.Course
			require.NoError(t, json.Unmarshal([]byte(`{"id": 1, "price": 100000, "discounted_price": `+tt.raw+`}`), &course))
			assert.Equal(t, tt.want, course.DiscountedPrice)
		})
	}
}

/*
TestCourse_LenientDecoding verifies that malformed numerics degrade to zero.
*/
func TestCourse_LenientDecoding(t *testing.T) {
	payload := `{
		"id": 5,
		"title": "Go",
		"price": "abc",
		"discount_percentage": null,
		"rating": "4.5",
		"is_active": true
	}`

	var course catalog.Course
	require.NoError(t, json.Unmarshal([]byte(payload), &course))

	assert.Equal(t, int64(5), course.ID)
	assert.Zero(t, course.Price)
	assert.Zero(t, course.DiscountPercentage)
	assert.Nil(t, course.DiscountedPrice)
	assert.Equal(t, money.Amount(4.5), course.Rating)
	assert.False(t, course.PriceView().HasDiscount)
}

/*
TestCourse_LenientCountAndTime verifies that a malformed rating count or
creation time degrades to zero instead of failing the whole payload.
*/
func TestCourse_LenientCountAndTime(t *testing.T) {
	tests := []struct {
		name        string
		ratingCount string
		createdAt   string
		wantCount   int
		wantTime    time.Time
	}{
		{"well formed", `12`, `"2026-03-01T10:00:00Z"`, 12, time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)},
		{"numeric string", `"12"`, `"2026-03-01 10:00:00"`, 12, time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)},
		{"fractional count", `4.5`, `"2026-03-01"`, 4, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)},
		{"empty values", `""`, `""`, 0, time.Time{}},
		{"garbage", `"many"`, `"yesterday"`, 0, time.Time{}},
		{"wrong types", `{}`, `12345`, 0, time.Time{}},
		{"null", `null`, `null`, 0, time.Time{}},
		{"negative count", `-3`, `"2026-03-01T10:00:00Z"`, 0, time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload := `{"id": 7, "title": "Go", "price": 1000, "rating_count": ` + tt.ratingCount + `, "created_at": ` + tt.createdAt + `}`

			var course catalog.Course
			require.NoError(t, json.Unmarshal([]byte(payload), &course))

			assert.Equal(t, int64(7), course.ID)
			assert.Equal(t, money.Amount(1000), course.Price)
			assert.Equal(t, tt.wantCount, course.RatingCount)
			assert.True(t, tt.wantTime.Equal(course.CreatedAt), "created_at = %v", course.CreatedAt)
		})
	}
}

/*
TestCourseDetails_DecodesLessons keeps the lessons when the course decodes leniently.
*/
func TestCourseDetails_DecodesLessons(t *testing.T) {
	payload := `{"id": 3, "title": "Go", "rating_count": "x", "lessons": [{"id": 1, "course_id": 3, "title": "Intro", "position": 1}]}`

	var details catalog.CourseDetails
	require.NoError(t, json.Unmarshal([]byte(payload), &details))

	assert.Equal(t, int64(3), details.ID)
	assert.Zero(t, details.RatingCount)
	require.Len(t, details.Lessons, 1)
	assert.Equal(t, "Intro", details.Lessons[0].Title)
}

/*
TestValidateCourseInput rejects out-of-range discounts instead of clamping them.
*/
func TestValidateCourseInput(t *testing.T) {
	valid := catalog.CourseInput{Title: "Go in practice", CategoryID: 1, Price: 100000, DiscountPercentage: 20}
	assert.NoError(t, catalog.ValidateCourseInput(valid))

	tests := []struct {
		name  string
		input catalog.CourseInput
		field string
	}{
		{"discount above 100", catalog.CourseInput{Title: "x", CategoryID: 1, DiscountPercentage: 150}, "discount_percentage"},
		{"negative discount", catalog.CourseInput{Title: "x", CategoryID: 1, DiscountPercentage: -1}, "discount_percentage"},
		{"negative price", catalog.CourseInput{Title: "x", CategoryID: 1, Price: -10}, "price"},
		{"missing title", catalog.CourseInput{CategoryID: 1}, "title"},
		{"missing category", catalog.CourseInput{Title: "x"}, "category_id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := catalog.ValidateCourseInput(tt.input)
			require.Error(t, err)

			appErr := apperr.As(err)
			require.NotNil(t, appErr)
			assert.Equal(t, apperr.CodeValidation, appErr.Code)
			require.NotEmpty(t, appErr.Details)
			assert.Equal(t, tt.field, appErr.Details[0].Field)
		})
	}
}

/*
TestCategoryInput derives the slug and validates it.
*/
func TestCategoryInput(t *testing.T) {
	input := catalog.NormalizeCategoryInput(catalog.CategoryInput{Name: "Lập Trình Web"})
	assert.Equal(t, "lap-trinh-web", input.Slug)
	assert.NoError(t, catalog.ValidateCategoryInput(input))

	err := catalog.ValidateCategoryInput(catalog.CategoryInput{Name: "Bad", Slug: "Bad Slug"})
	assert.True(t, apperr.HasCode(err, apperr.CodeValidation))
}

/*
TestAvailable excludes owned courses for authenticated viewers only.
*/
func TestAvailable(t *testing.T) {
	courses := []catalog.Course{
		{ID: 1, IsActive: true},
		{ID: 2, IsActive: true},
		{ID: 3, IsActive: true},
		{ID: 4, IsActive: false},
	}
	enrollments := []catalog.Enrollment{{CourseID: 2}}

	ids := func(courses []catalog.Course) []int64 {
		out := []int64{}
		for _, course := range courses {
			out = append(out, course.ID)
		}
		return out
	}

	assert.Equal(t, []int64{1, 3}, ids(catalog.Available(courses, enrollments, true)))
	assert.Equal(t, []int64{1, 2, 3}, ids(catalog.Available(courses, enrollments, false)))
	assert.Equal(t, []int64{1, 2, 3}, ids(catalog.Available(courses, nil, true)))

	assert.True(t, catalog.IsOwned(2, enrollments))
	assert.False(t, catalog.IsOwned(1, enrollments))
}

/*
TestFilter_Apply combines criteria on the effective price and sorts.
*/
func TestFilter_Apply(t *testing.T) {
	now := time.Now()
	courses := []catalog.Course{
		{ID: 1, Title: "Go Basics", CategoryID: 1, Price: 100000, DiscountPercentage: 50, Rating: 4.8, CreatedAt: now.Add(-3 * time.Hour)},
		{ID: 2, Title: "Advanced Go", CategoryID: 1, Price: 300000, Rating: 4.1, CreatedAt: now.Add(-1 * time.Hour)},
		{ID: 3, Title: "Vẽ Màu Nước", CategoryID: 2, Price: 80000, Rating: 3.9, CreatedAt: now.Add(-2 * time.Hour)},
	}

	ids := func(courses []catalog.Course) []int64 {
		out := []int64{}
		for _, course := range courses {
			out = append(out, course.ID)
		}
		return out
	}

	assert.True(t, catalog.Filter{}.IsZero())
	assert.Equal(t, []int64{1, 2, 3}, ids(catalog.Filter{}.Apply(courses)))

	byCategory := catalog.Filter{CategoryIDs: []int64{1}, Sort: catalog.SortPriceAsc}
	assert.Equal(t, []int64{1, 2}, ids(byCategory.Apply(courses)))

	// Course 1 costs 50000 after its discount, so it falls under the bound.
	cheap := catalog.Filter{MaxPrice: pointer.To(money.Amount(60000))}
	assert.Equal(t, []int64{1}, ids(cheap.Apply(courses)))

	assert.Equal(t, []int64{1, 2}, ids(catalog.Filter{MinRating: 4}.Apply(courses)))
	assert.Equal(t, []int64{3}, ids(catalog.Filter{Search: "MÀU"}.Apply(courses)))
	assert.Equal(t, []int64{2, 3, 1}, ids(catalog.Filter{Sort: catalog.SortNewest}.Apply(courses)))
	assert.Equal(t, []int64{2, 3, 1}, ids(catalog.Filter{Sort: catalog.SortPriceDesc}.Apply(courses)))
	assert.Equal(t, []int64{1, 2, 3}, ids(catalog.Filter{Sort: catalog.SortRating}.Apply(courses)))

	assert.Empty(t, catalog.Filter{Search: "rust"}.Apply(courses))
	assert.True(t, catalog.SortRating.IsValid())
	assert.False(t, catalog.SortOrder("cheapest").IsValid())
}
