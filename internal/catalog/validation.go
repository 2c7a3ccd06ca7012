// Copyright (c) 2026 Edura. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package catalog

import (
	"github.com/taibuivan/edura/internal/platform/validate"
	"github.com/taibuivan/edura/pkg/slug"
)

// ValidateCourseInput rejects course payloads before they reach the network.
// An out-of-range discount is an error here, never clamped.
func ValidateCourseInput(input CourseInput) error {
	validator := &validate.Validator{}
	validator.
		Required("title", input.Title).
		MaxLen("title", input.Title, 255).
		Positive("category_id", input.CategoryID).
		NonNegative("price", input.Price.Float()).
		FloatRange("discount_percentage", input.DiscountPercentage.Float(), 0, 100)

	return validator.Err()
}

// NormalizeCategoryInput fills the slug from the name when it is left empty.
func NormalizeCategoryInput(input CategoryInput) CategoryInput {
	if input.Slug == "" {
		input.Slug = slug.From(input.Name)
	}
	return input
}

// ValidateCategoryInput rejects category payloads before they reach the network.
func ValidateCategoryInput(input CategoryInput) error {
	validator := &validate.Validator{}
	validator.
		Required("name", input.Name).
		MaxLen("name", input.Name, 100).
		Slug("slug", input.Slug).
		MaxLen("description", input.Description, 1000)

	return validator.Err()
}
