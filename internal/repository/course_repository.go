package repository

import (
	"errors"

	"go-fairway/internal/model"

	"gorm.io/gorm"
)

type CourseRepository struct {
	db *gorm.DB
}

func NewCourseRepository(db *gorm.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

// Create inserts the course together with its holes in one
// transaction.
func (r *CourseRepository) Create(course *model.Course) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return tx.Create(course).Error
	})
}

// FindByID preloads holes in tee order. Returns (nil, nil) when the
// course does not exist.
func (r *CourseRepository) FindByID(courseID uint) (*model.Course, error) {
	var course model.Course
	err := r.db.Preload("Holes", func(db *gorm.DB) *gorm.DB {
		return db.Order("holes.number ASC")
	}).First(&course, courseID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &course, nil
}

func (r *CourseRepository) List(limit, offset int) ([]model.Course, error) {
	var courses []model.Course
	err := r.db.Order("name ASC").Limit(limit).Offset(offset).Find(&courses).Error
	return courses, err
}

func (r *CourseRepository) CountHoles(courseID uint) (int64, error) {
	var count int64
	err := r.db.Model(&model.Hole{}).Where("course_id = ?", courseID).Count(&count).Error
	return count, err
}

func (r *CourseRepository) CreateHoles(holes []model.Hole) error {
	return r.db.Create(&holes).Error
}

func (r *CourseRepository) FindHole(holeID uint) (*model.Hole, error) {
	var hole model.Hole
	if err := r.db.First(&hole, holeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &hole, nil
}

func (r *CourseRepository) FindHoles(courseID uint) ([]model.Hole, error) {
	var holes []model.Hole
	err := r.db.Where("course_id = ?", courseID).Order("number ASC").Find(&holes).Error
	return holes, err
}
