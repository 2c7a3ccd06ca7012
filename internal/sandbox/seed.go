// Copyright (c) 2026 Edura. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sandbox

import (
	"fmt"

	"github.com/taibuivan/edura/internal/catalog"
	"github.com/taibuivan/edura/internal/money"
	"github.com/taibuivan/edura/internal/platform/sec"
	"github.com/taibuivan/edura/internal/session"
)

// SeedPassword is the password of every demo account.
const SeedPassword = "edura-demo"

// Demo account emails.
const (
	SeedAdminEmail      = "admin@edura.dev"
	SeedInstructorEmail = "instructor@edura.dev"
	SeedStudentEmail    = "student@edura.dev"
)

type seedCourse struct {
	category string
	title    string
	price    money.Amount
	discount money.Amount
	active   bool
	lessons  []string
}

var seedCourses = []seedCourse{
	{"Lập trình", "Go từ cơ bản đến nâng cao", 1_200_000, 25, true, []string{"Cài đặt môi trường", "Kiểu dữ liệu", "Goroutine và channel"}},
	{"Lập trình", "Xây dựng REST API với chi", 900_000, 0, true, []string{"Router", "Middleware", "Kiểm thử handler"}},
	{"Thiết kế", "Figma cho người mới bắt đầu", 650_000, 10, true, []string{"Khung làm việc", "Component", "Prototype"}},
	{"Kinh doanh", "Khởi nghiệp tinh gọn", 450_000, 50, true, []string{"Giả thuyết", "MVP", "Đo lường"}},
	{"Kinh doanh", "Quản lý tài chính cá nhân", 300_000, 0, false, []string{"Ngân sách", "Đầu tư"}},
}

/*
Seed fills an empty store with demo accounts and a small catalogue.

The student already owns the first course, so availability filtering is
visible straight away.
*/
func Seed(store *Store) error {
	hashedPassword, err := sec.HashPassword(SeedPassword)
	if err != nil {
		return fmt.Errorf("sandbox_seed_failed: %w", err)
	}

	accounts := map[string]session.User{}
	for _, user := range []session.User{
		{Email: SeedAdminEmail, FullName: "Quản trị viên", Role: sec.RoleAdmin},
		{Email: SeedInstructorEmail, FullName: "Nguyễn Văn Giảng", Role: sec.RoleInstructor},
		{Email: SeedStudentEmail, FullName: "Trần Thị Học", Role: sec.RoleStudent},
	} {
		created, err := store.CreateAccount(user, hashedPassword)
		if err != nil {
			return fmt.Errorf("sandbox_seed_failed: %w", err)
		}
		accounts[created.Email] = created
	}

	categories := map[string]catalog.Category{}
	for _, course := range seedCourses {
		if _, ok := categories[course.category]; ok {
			continue
		}
		category, err := store.SaveCategory(0, catalog.NormalizeCategoryInput(catalog.CategoryInput{Name: course.category}))
		if err != nil {
			return fmt.Errorf("sandbox_seed_failed: %w", err)
		}
		categories[course.category] = category
	}

	instructor := accounts[SeedInstructorEmail]
	for index, seeded := range seedCourses {
		course, err := store.SaveCourse(0, instructor.ID, catalog.CourseInput{
			Title:              seeded.title,
			Description:        "Khoá học " + seeded.title,
			CategoryID:         categories[seeded.category].ID,
			Price:              seeded.price,
			DiscountPercentage: seeded.discount,
			IsActive:           seeded.active,
		})
		if err != nil {
			return fmt.Errorf("sandbox_seed_failed: %w", err)
		}

		for position, title := range seeded.lessons {
			store.SaveLesson(catalog.Lesson{
				CourseID:  course.ID,
				Title:     title,
				Position:  position + 1,
				IsPreview: position == 0,
			})
		}

		if index == 0 {
			store.Enroll(accounts[SeedStudentEmail].ID, course.ID)
		}
	}

	return nil
}
