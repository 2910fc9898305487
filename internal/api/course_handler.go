package api

import (
	"net/http"

	"go-fairway/internal/service"

	"github.com/gin-gonic/gin"
)

type CourseHandler struct {
	courseService *service.CourseService
}

func NewCourseHandler(courseService *service.CourseService) *CourseHandler {
	return &CourseHandler{courseService: courseService}
}

func (h *CourseHandler) CreateCourse(c *gin.Context) {
	if _, ok := getUserIDFromContext(c); !ok {
		return
	}

	var req service.CreateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	course, err := h.courseService.CreateCourse(req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"course": course})
}

func (h *CourseHandler) GetCourse(c *gin.Context) {
	courseID, ok := getUintParam(c, "id")
	if !ok {
		return
	}

	course, err := h.courseService.GetCourse(courseID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"course": course})
}

func (h *CourseHandler) ListCourses(c *gin.Context) {
	limit, offset := getPagination(c)
	courses, err := h.courseService.ListCourses(limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"courses": courses})
}
