// Copyright (c) 2026 Edura. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/taibuivan/edura/internal/catalog"
	"github.com/taibuivan/edura/internal/listing"
	"github.com/taibuivan/edura/internal/money"
	"github.com/taibuivan/edura/pkg/pointer"
	"github.com/taibuivan/edura/pkg/query"
)

// visited returns the names of the flags set on the command line.
func visited(set *flag.FlagSet) map[string]bool {
	seen := map[string]bool{}
	set.Visit(func(f *flag.Flag) { seen[f.Name] = true })
	return seen
}

func runCourses(ctx context.Context, cli *cli, args []string) error {
	set := flags("courses")
	available := set.Bool("available", false, "hide courses you already own")
	categories := set.String("category", "", "comma-separated category ids")
	minPrice := set.Float64("min-price", 0, "lowest effective price")
	maxPrice := set.Float64("max-price", 0, "highest effective price")
	minRating := set.Float64("min-rating", 0, "lowest rating")
	search := set.String("search", "", "text in title or description")
	sortOrder := set.String("sort", "", "newest, price_asc, price_desc or rating")
	if err := set.Parse(args); err != nil {
		return err
	}

	// ── 1. Criteria ───────────────────────────────────────────────────────
	filter := catalog.Filter{
		MinRating: money.Amount(*minRating),
		Search:    *search,
		Sort:      catalog.SortOrder(*sortOrder),
	}
	if !filter.Sort.IsValid() {
		return fmt.Errorf("unknown -sort %q", *sortOrder)
	}
	filter.CategoryIDs = query.IDs(*categories)
	seen := visited(set)
	if seen["min-price"] {
		filter.MinPrice = pointer.To(money.Amount(*minPrice))
	}
	if seen["max-price"] {
		filter.MaxPrice = pointer.To(money.Amount(*maxPrice))
	}

	// ── 2. Load ───────────────────────────────────────────────────────────
	view := listing.New[catalog.Course]()
	defer view.Close()
	view.SetFilter(filter.Match)

	authenticated := cli.app.Auth.Snapshot().IsAuthenticated
	err := view.Load(ctx, func(ctx context.Context) ([]catalog.Course, error) {
		if *available {
			return cli.app.API.Courses.Available(ctx, authenticated)
		}
		return cli.app.API.Courses.List(ctx)
	})
	if err != nil {
		return err
	}

	// ── 3. Render ─────────────────────────────────────────────────────────
	snapshot := view.Snapshot()
	if snapshot.Empty {
		if len(snapshot.All) == 0 {
			fmt.Fprintln(cli.out, "No courses available.")
		} else {
			fmt.Fprintln(cli.out, "No courses match your filters.")
		}
		return nil
	}

	table := cli.table()
	fmt.Fprintln(table, "ID\tTITLE\tCATEGORY\tPRICE\tRATING")
	for _, course := range filter.Apply(snapshot.Items) {
		fmt.Fprintf(table, "%d\t%s\t%s\t%s\t%.1f (%d)\n",
			course.ID, course.Title, course.CategoryName,
			course.PriceView().Render(cli.app.Formatter),
			course.Rating.Float(), course.RatingCount,
		)
	}
	return table.Flush()
}

func runCourse(ctx context.Context, cli *cli, args []string) error {
	set := flags("course")
	id := set.Int64("id", 0, "course id")
	if err := set.Parse(args); err != nil {
		return err
	}
	if err := requireID("id", *id); err != nil {
		return err
	}

	details, err := cli.app.API.Courses.Details(ctx, *id)
	if err != nil {
		return err
	}

	fmt.Fprintf(cli.out, "%s\n%s\n\n", details.Title, details.Description)
	fmt.Fprintf(cli.out, "Price: %s\n", details.PriceView().Render(cli.app.Formatter))
	if details.Thumbnail != "" {
		fmt.Fprintf(cli.out, "Thumbnail: %s\n", cli.app.API.AssetURL(details.Thumbnail))
	}
	fmt.Fprintln(cli.out)
	return printLessons(cli, details.Lessons)
}

func runLessons(ctx context.Context, cli *cli, args []string) error {
	set := flags("lessons")
	courseID := set.Int64("course", 0, "course id")
	if err := set.Parse(args); err != nil {
		return err
	}
	if err := requireID("course", *courseID); err != nil {
		return err
	}

	lessons, err := cli.app.API.Lessons.ListByCourse(ctx, *courseID)
	if err != nil {
		return err
	}
	return printLessons(cli, lessons)
}

func printLessons(cli *cli, lessons []catalog.Lesson) error {
	if len(lessons) == 0 {
		fmt.Fprintln(cli.out, "No lessons yet.")
		return nil
	}

	table := cli.table()
	fmt.Fprintln(table, "#\tLESSON\tPREVIEW")
	for _, lesson := range lessons {
		preview := ""
		if lesson.IsPreview {
			preview = "free"
		}
		fmt.Fprintf(table, "%d\t%s\t%s\n", lesson.Position, lesson.Title, preview)
	}
	return table.Flush()
}

func runCategories(ctx context.Context, cli *cli, _ []string) error {
	categories, err := cli.app.API.Categories.List(ctx)
	if err != nil {
		return err
	}

	table := cli.table()
	fmt.Fprintln(table, "ID\tNAME\tSLUG")
	for _, category := range categories {
		fmt.Fprintf(table, "%d\t%s\t%s\n", category.ID, category.Name, category.Slug)
	}
	return table.Flush()
}

func runCategoryCreate(ctx context.Context, cli *cli, args []string) error {
	set := flags("category-create")
	name := set.String("name", "", "category name")
	slug := set.String("slug", "", "url slug (derived from the name when empty)")
	description := set.String("description", "", "description")
	if err := set.Parse(args); err != nil {
		return err
	}

	category, err := cli.app.API.Categories.Create(ctx, catalog.CategoryInput{Name: *name, Slug: *slug, Description: *description})
	if err != nil {
		return err
	}

	fmt.Fprintf(cli.out, "Category #%d %q created (%s).\n", category.ID, category.Name, category.Slug)
	return nil
}

func runCourseCreate(ctx context.Context, cli *cli, args []string) error {
	set := flags("course-create")
	title := set.String("title", "", "course title")
	description := set.String("description", "", "description")
	categoryID := set.Int64("category", 0, "category id")
	price := set.Float64("price", 0, "base price")
	discount := set.Float64("discount", 0, "discount percentage, 0-100")
	inactive := set.Bool("inactive", false, "create unpublished")
	if err := set.Parse(args); err != nil {
		return err
	}

	course, err := cli.app.API.Courses.Create(ctx, catalog.CourseInput{
		Title:              *title,
		Description:        *description,
		CategoryID:         *categoryID,
		Price:              money.Amount(*price),
		DiscountPercentage: money.Amount(*discount),
		IsActive:           !*inactive,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(cli.out, "Course #%d %q created at %s.\n", course.ID, course.Title, course.PriceView().Render(cli.app.Formatter))
	return nil
}
