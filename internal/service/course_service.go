package service

import (
	"fmt"

	"go-fairway/internal/apperr"
	"go-fairway/internal/model"
	"go-fairway/internal/repository"
)

const defaultHoleCount = 18

// CourseService handles course and hole data.
type CourseService struct {
	courseRepo *repository.CourseRepository
}

func NewCourseService(courseRepo *repository.CourseRepository) *CourseService {
	return &CourseService{courseRepo: courseRepo}
}

type HoleRequest struct {
	Number       int `json:"number" binding:"required,min=1"`
	Par          int `json:"par" binding:"required,min=3,max=6"`
	Yardage      int `json:"yardage"`
	HandicapRank int `json:"handicap_rank"`
}

type CreateCourseRequest struct {
	Name     string        `json:"name" binding:"required,max=100"`
	Location string        `json:"location" binding:"max=100"`
	Holes    []HoleRequest `json:"holes" binding:"dive"`
}

func (s *CourseService) CreateCourse(req CreateCourseRequest) (*model.Course, error) {
	seen := make(map[int]bool, len(req.Holes))
	holes := make([]model.Hole, 0, len(req.Holes))
	for _, h := range req.Holes {
		if seen[h.Number] {
			return nil, apperr.New(apperr.InvalidInput, fmt.Sprintf("duplicate hole number %d", h.Number))
		}
		seen[h.Number] = true
		holes = append(holes, model.Hole{
			Number:       h.Number,
			Par:          h.Par,
			Yardage:      h.Yardage,
			HandicapRank: h.HandicapRank,
		})
	}

	course := &model.Course{
		Name:     req.Name,
		Location: req.Location,
		Holes:    holes,
	}
	if err := s.courseRepo.Create(course); err != nil {
		return nil, err
	}
	return course, nil
}

func (s *CourseService) GetCourse(courseID uint) (*model.Course, error) {
	course, err := s.courseRepo.FindByID(courseID)
	if err != nil {
		return nil, err
	}
	if course == nil {
		return nil, apperr.New(apperr.NotFound, "course not found")
	}
	return course, nil
}

func (s *CourseService) ListCourses(limit, offset int) ([]model.Course, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.courseRepo.List(limit, offset)
}

// EnsureHoles lazily seeds the default 18-hole layout when a course
// has none, so a session can always start. The default alternates par
// 4/3/5 which sums to 72.
func (s *CourseService) EnsureHoles(courseID uint) ([]model.Hole, error) {
	count, err := s.courseRepo.CountHoles(courseID)
	if err != nil {
		return nil, err
	}
	if count == 0 {
		if err := s.courseRepo.CreateHoles(defaultLayout(courseID)); err != nil {
			return nil, err
		}
	}
	return s.courseRepo.FindHoles(courseID)
}

func defaultLayout(courseID uint) []model.Hole {
	pattern := []int{4, 3, 5}
	yardages := map[int]int{3: 165, 4: 385, 5: 520}

	holes := make([]model.Hole, 0, defaultHoleCount)
	for i := 1; i <= defaultHoleCount; i++ {
		par := pattern[(i-1)%len(pattern)]
		holes = append(holes, model.Hole{
			CourseID:     courseID,
			Number:       i,
			Par:          par,
			Yardage:      yardages[par],
			HandicapRank: i,
		})
	}
	return holes
}
