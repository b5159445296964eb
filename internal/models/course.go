package models

import "time"

// Course is a sellable unit of content. Lessons hang off sections, never off
// the course directly.
type Course struct {
	ID          int64      `db:"id" json:"id"`
	Slug        string     `db:"slug" json:"slug"`
	Title       string     `db:"title" json:"title"`
	PriceAmount int64      `db:"price_amount" json:"price_amount"`
	IsPublished bool       `db:"is_published" json:"is_published"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	DeletedAt   *time.Time `db:"deleted_at" json:"-"`
}

// Section groups lessons inside a course.
type Section struct {
	ID       int64  `db:"id" json:"id"`
	CourseID int64  `db:"course_id" json:"course_id"`
	Title    string `db:"title" json:"title"`
	Position int    `db:"position" json:"position"`
}

// SectionContent is a single lesson under a section.
type SectionContent struct {
	ID        int64  `db:"id" json:"id"`
	SectionID int64  `db:"section_id" json:"section_id"`
	Title     string `db:"title" json:"title"`
	Position  int    `db:"position" json:"position"`
}
