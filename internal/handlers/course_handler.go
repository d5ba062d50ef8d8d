package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"brainself/internal/repository"
	"brainself/internal/services"
)

type CourseHandler struct {
	courses services.CourseService
}

func NewCourseHandler(courses services.CourseService) *CourseHandler {
	return &CourseHandler{courses: courses}
}

// GET /api/subjects
func (h *CourseHandler) Subjects(c *gin.Context) {
	subjects, err := h.courses.Subjects(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"subjects": subjects})
}

func optionalID(c *gin.Context, key string) (*uuid.UUID, bool) {
	raw := c.Query(key)
	if raw == "" {
		return nil, true
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid " + key})
		return nil, false
	}
	return &id, true
}

// GET /api/courses?search=&subject_id=&difficulty=&grade=
func (h *CourseHandler) Courses(c *gin.Context) {
	subjectID, ok := optionalID(c, "subject_id")
	if !ok {
		return
	}
	courses, err := h.courses.Courses(c.Request.Context(), repository.CourseFilter{
		Search:     c.Query("search"),
		SubjectID:  subjectID,
		Difficulty: c.Query("difficulty"),
		GradeLevel: c.Query("grade"),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"courses": courses})
}

// GET /api/courses/:id
func (h *CourseHandler) Course(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	details, err := h.courses.Course(c.Request.Context(), SessionFrom(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, details)
}

// POST /api/courses/:id/enroll
func (h *CourseHandler) Enroll(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	enrollment, err := h.courses.Enroll(c.Request.Context(), SessionFrom(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"enrollment": enrollment})
}

// GET /api/enrollments
func (h *CourseHandler) MyEnrollments(c *gin.Context) {
	enrollments, err := h.courses.MyEnrollments(c.Request.Context(), SessionFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"enrollments": enrollments})
}

type completeLessonReq struct {
	Minutes int `json:"minutes" binding:"min=0"`
}

// POST /api/lessons/:id/complete
func (h *CourseHandler) CompleteLesson(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req completeLessonReq
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
	}
	enrollment, err := h.courses.CompleteLesson(c.Request.Context(), SessionFrom(c), id, req.Minutes)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"enrollment": enrollment})
}

// GET /api/videos?subject_id=
func (h *CourseHandler) Videos(c *gin.Context) {
	subjectID, ok := optionalID(c, "subject_id")
	if !ok {
		return
	}
	videos, err := h.courses.Videos(c.Request.Context(), subjectID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"videos": videos})
}

// POST /api/videos/:id/view
func (h *CourseHandler) ViewVideo(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	video, err := h.courses.ViewVideo(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"video": video})
}

// PUT /api/videos/:id/progress
func (h *CourseHandler) SaveVideoProgress(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req services.VideoProgressInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	progress, err := h.courses.SaveVideoProgress(c.Request.Context(), SessionFrom(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"progress": progress})
}

// POST /api/study-sessions
func (h *CourseHandler) LogStudySession(c *gin.Context) {
	var req services.StudySessionInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	session, err := h.courses.LogStudySession(c.Request.Context(), SessionFrom(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"session": session})
}
