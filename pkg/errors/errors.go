package errors

import "fmt"

var (
	// JWT и токены
	ErrInvalidSigningMethod = fmt.Errorf("неверный метод подписи токена")
	ErrInvalidToken         = fmt.Errorf("недопустимый токен")
	ErrTokenExpired         = fmt.Errorf("срок действия токена истёк")
	ErrTokenIsNotRefresh    = fmt.Errorf("токен не является refresh-токеном")
	ErrTokenIsNotAccess     = fmt.Errorf("токен не является access-токеном")
	ErrSessionNotFound      = fmt.Errorf("сессия не найдена или отозвана")

	// Авторизация
	ErrEmptyAuthHeader    = fmt.Errorf("заголовок авторизации отсутствует")
	ErrInvalidAuthHeader  = fmt.Errorf("неверный формат заголовка авторизации")
	ErrInvalidCredentials = fmt.Errorf("неверные учётные данные")
	ErrUnauthorized       = fmt.Errorf("неавторизован")
	ErrForbidden          = fmt.Errorf("доступ запрещён")
	ErrLoginLocked        = fmt.Errorf("слишком много неудачных попыток входа, повторите позже")

	// Контекст
	ErrUserIDNotFoundInContext = fmt.Errorf("UserID не найден в контексте запроса")

	// Домен
	ErrNotFound          = fmt.Errorf("запись не найдена")
	ErrBadRequest        = fmt.Errorf("неверный запрос")
	ErrTicketArchived    = fmt.Errorf("заявка находится в архиве")
	ErrNoAssignedMaster  = fmt.Errorf("на заявку не назначен мастер")
	ErrMasterNotFound    = fmt.Errorf("мастер не найден или недоступен")
	ErrClientHasActive   = fmt.Errorf("у клиента есть активные заявки")
	ErrUsernameTaken     = fmt.Errorf("пользователь с таким логином уже существует")
)

// InvalidInputError — ошибка валидации входных данных, текст уходит клиенту.
type InvalidInputError struct {
	Message string
}

func (e *InvalidInputError) Error() string { return e.Message }

func NewInvalidInputError(format string, args ...interface{}) error {
	return &InvalidInputError{Message: fmt.Sprintf(format, args...)}
}
