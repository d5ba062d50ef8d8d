package handlers

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"brainself/internal/access"
)

// Handlers все обработчики API
type Handlers struct {
	Auth       *AuthHandler
	Profile    *ProfileHandler
	SchoolTags *SchoolTagHandler
	Groups     *GroupHandler
	Chat       *ChatHandler
	Marks      *MarksHandler
	Analytics  *AnalyticsHandler
	Tests      *TestHandler
	Courses    *CourseHandler
	Student    *StudentHandler
	Timetable  *TimetableHandler
	Inbox      *InboxHandler
	Content    *ContentHandler
}

// RouterOptions общие зависимости middleware
type RouterOptions struct {
	Tokens         TokenVerifier
	Resolver       SessionResolver
	Log            *slog.Logger
	AllowedOrigins []string
}

// NewRouter собирает gin.Engine со всеми маршрутами
func NewRouter(opts RouterOptions, h Handlers) (*gin.Engine, error) {
	if err := RegisterValidators(); err != nil {
		return nil, fmt.Errorf("failed to register validators: %w", err)
	}
	if opts.Log == nil {
		opts.Log = slog.Default()
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestLogger(opts.Log))
	router.Use(CORSMiddleware(opts.AllowedOrigins))
	router.Use(SessionMiddleware(opts.Tokens, opts.Resolver))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api")

	// Публичные маршруты
	public := api.Group("")
	{
		public.POST("/auth/signup", h.Auth.SignUp)
		public.POST("/auth/signin", h.Auth.SignIn)
		public.GET("/auth/session", h.Auth.GetSession)
		public.GET("/school-tags", h.SchoolTags.List)
		public.POST("/contact", h.Inbox.ContactAdmins)
		public.GET("/papers", h.Content.ListPapers)
		public.GET("/papers/:file", h.Content.DownloadPaper)
		public.GET("/subjects", h.Courses.Subjects)
		public.GET("/courses", h.Courses.Courses)
		public.GET("/videos", h.Courses.Videos)
		public.POST("/videos/:id/view", h.Courses.ViewVideo)
	}

	// Любой вошедший пользователь
	protected := api.Group("")
	protected.Use(Gate(access.RequireAuthenticated))
	{
		protected.POST("/auth/signout", h.Auth.SignOut)
		protected.POST("/auth/refresh", h.Auth.Refresh)
		protected.PUT("/auth/password", h.Auth.ChangePassword)

		protected.GET("/profile", h.Profile.GetMe)
		protected.PUT("/profile", h.Profile.UpdateMe)

		protected.GET("/dashboard", h.Student.Dashboard)
		protected.GET("/achievements", h.Student.Achievements)
		protected.GET("/achievements/catalog", h.Student.AchievementCatalog)

		protected.GET("/marks", h.Marks.Mine)

		protected.GET("/courses/:id", h.Courses.Course)
		protected.POST("/courses/:id/enroll", h.Courses.Enroll)
		protected.GET("/enrollments", h.Courses.MyEnrollments)
		protected.POST("/lessons/:id/complete", h.Courses.CompleteLesson)
		protected.PUT("/videos/:id/progress", h.Courses.SaveVideoProgress)
		protected.POST("/study-sessions", h.Courses.LogStudySession)

		protected.GET("/tests", h.Tests.List)
		protected.GET("/tests/:id/questions", h.Tests.Questions)
		protected.POST("/tests/:id/attempts", h.Tests.Start)
		protected.PUT("/attempts/:id/answers", h.Tests.SaveAnswer)
		protected.POST("/attempts/:id/submit", h.Tests.Submit)
		protected.GET("/attempts/:id/card", h.Tests.ExportResultCard)

		protected.GET("/timetable", h.Timetable.List)
		protected.POST("/timetable", h.Timetable.Create)
		protected.PUT("/timetable/:id", h.Timetable.Update)
		protected.DELETE("/timetable/:id", h.Timetable.Delete)

		protected.GET("/messages", h.Inbox.List)
		protected.GET("/messages/unread", h.Inbox.UnreadCount)
		protected.PUT("/messages/read", h.Inbox.MarkAllRead)
		protected.PUT("/messages/:id/read", h.Inbox.MarkRead)
		protected.DELETE("/messages/:id", h.Inbox.Delete)

		protected.GET("/my-groups", h.Groups.MyGroups)
		protected.GET("/groups/:id", h.Groups.GetGroup)
		protected.GET("/groups/:id/members", h.Groups.ListMembers)
		protected.GET("/groups/:id/messages", h.Chat.GetMessages)
		protected.POST("/groups/:id/messages", h.Chat.SendMessage)
		protected.GET("/groups/:id/stream", h.Chat.Stream)

		protected.POST("/notes", h.Content.GenerateNotes)
		protected.GET("/users/:profile_id/school-tags", h.SchoolTags.ListForUser)
	}

	// Маршруты преподавателя (администратор тоже проходит)
	teacher := api.Group("/teacher")
	teacher.Use(Gate(access.RequireTeacher))
	{
		teacher.GET("/students", h.Profile.ListStudents)

		teacher.GET("/marks", h.Marks.List)
		teacher.POST("/marks", h.Marks.Add)
		teacher.PUT("/marks/:id", h.Marks.Update)
		teacher.DELETE("/marks/:id", h.Marks.Delete)

		teacher.GET("/analytics", h.Analytics.Report)
		teacher.GET("/analytics/students/:nickname", h.Analytics.StudentAnalysis)

		teacher.GET("/groups", h.Groups.ListGroups)
		teacher.POST("/groups", h.Groups.CreateGroup)
		teacher.DELETE("/groups/:id", h.Groups.DeleteGroup)
		teacher.GET("/groups/:id/eligible", h.Groups.EligibleMembers)
		teacher.POST("/groups/:id/members", h.Groups.AddMember)
		teacher.DELETE("/groups/:id/members/:user_id", h.Groups.RemoveMember)
	}

	// Маршруты администратора
	admin := api.Group("/admin")
	admin.Use(Gate(access.RequireAdmin))
	{
		admin.GET("/users", h.Profile.ListUsers)
		admin.PUT("/users/role", h.Profile.BulkUpdateRole)
		admin.PUT("/users/:id/role", h.Profile.UpdateRole)
		admin.GET("/stats", h.Profile.RoleStats)

		admin.POST("/school-tags", h.SchoolTags.Create)
		admin.PUT("/school-tags/:id", h.SchoolTags.Update)
		admin.DELETE("/school-tags/:id", h.SchoolTags.Delete)
		admin.POST("/school-tags/:id/users", h.SchoolTags.Assign)
		admin.DELETE("/school-tags/:id/users/:profile_id", h.SchoolTags.Unassign)
	}

	return router, nil
}
