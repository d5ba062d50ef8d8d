package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

// Repositories собирает все репозитории поверх одного подключения
type Repositories struct {
	db *gorm.DB

	Users         UserRepository
	Profiles      ProfileRepository
	SchoolTags    SchoolTagRepository
	Groups        GroupRepository
	Chat          ChatRepository
	Marks         MarksRepository
	Courses       CourseRepository
	Tests         TestRepository
	Achievements  AchievementRepository
	StudySessions StudySessionRepository
	Timetable     TimetableRepository
	Messages      MessageRepository
}

// New создает набор репозиториев
func New(db *gorm.DB) *Repositories {
	return &Repositories{
		db:            db,
		Users:         NewUserRepository(db),
		Profiles:      NewProfileRepository(db),
		SchoolTags:    NewSchoolTagRepository(db),
		Groups:        NewGroupRepository(db),
		Chat:          NewChatRepository(db),
		Marks:         NewMarksRepository(db),
		Courses:       NewCourseRepository(db),
		Tests:         NewTestRepository(db),
		Achievements:  NewAchievementRepository(db),
		StudySessions: NewStudySessionRepository(db),
		Timetable:     NewTimetableRepository(db),
		Messages:      NewMessageRepository(db),
	}
}

// Transactor выполняет несколько записей атомарно
type Transactor interface {
	Transaction(ctx context.Context, fn func(tx *Repositories) error) error
}

// Transaction выполняет fn в транзакции; ошибка fn откатывает все записи
func (r *Repositories) Transaction(ctx context.Context, fn func(tx *Repositories) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(New(tx))
	})
}

// IsNotFound сообщает, что запись не найдена
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// IsDuplicate сообщает о нарушении уникального индекса
func IsDuplicate(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}
