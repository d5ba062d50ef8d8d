package access

import "errors"

var (
	// ErrNotAuthenticated означает, что нужен вход в систему
	ErrNotAuthenticated = errors.New("login required")
	// ErrForbidden означает, что роль недостаточна
	ErrForbidden = errors.New("access denied")
	// ErrRoleLoading означает, что роль еще определяется
	ErrRoleLoading = errors.New("role is still loading")
)

// Requirement задает требуемую возможность
type Requirement int

const (
	RequireAuthenticated Requirement = iota
	RequireTeacher
	RequireAdmin
)

func (r Requirement) String() string {
	switch r {
	case RequireTeacher:
		return "teacher"
	case RequireAdmin:
		return "admin"
	}
	return "authenticated"
}

// Decision результат проверки доступа
type Decision int

const (
	Allow Decision = iota
	Pending
	LoginRequired
	Denied
)

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case Pending:
		return "pending"
	case LoginRequired:
		return "login_required"
	}
	return "denied"
}

// Check решает, можно ли показывать раздел. Пока роль загружается, ответ Pending.
func Check(s Session, req Requirement) Decision {
	if s.Loading {
		return Pending
	}
	if !s.IsAuthenticated() {
		return LoginRequired
	}
	switch req {
	case RequireTeacher:
		if !s.IsTeacher() {
			return Denied
		}
	case RequireAdmin:
		if !s.IsAdmin() {
			return Denied
		}
	}
	return Allow
}

// Authorize повторяет Check для путей записи и возвращает ошибку
func Authorize(s Session, req Requirement) error {
	switch Check(s, req) {
	case Allow:
		return nil
	case Pending:
		return ErrRoleLoading
	case LoginRequired:
		return ErrNotAuthenticated
	}
	return ErrForbidden
}
