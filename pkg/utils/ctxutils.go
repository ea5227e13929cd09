package utils

import (
	"context"
	"time"

	"repair-system/pkg/constants"
	"repair-system/pkg/contextkeys"
	apperrors "repair-system/pkg/errors"
)

// DBTimeout — верхняя граница для любого обращения к БД в рамках запроса.
const DBTimeout = 5 * time.Second

func WithDBTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, DBTimeout)
}

func GetUserIDFromCtx(ctx context.Context) (int, error) {
	userID, ok := ctx.Value(contextkeys.UserIDKey).(int)
	if !ok || userID == 0 {
		return 0, apperrors.ErrUserIDNotFoundInContext
	}
	return userID, nil
}

// GetOptionalUserIDFromCtx — для публичных эндпоинтов: отсутствие
// аутентификации не является ошибкой, created_by остаётся пустым.
func GetOptionalUserIDFromCtx(ctx context.Context) *int {
	userID, ok := ctx.Value(contextkeys.UserIDKey).(int)
	if !ok || userID == 0 {
		return nil
	}
	return &userID
}

func GetUserRoleFromCtx(ctx context.Context) (constants.Role, error) {
	role, ok := ctx.Value(contextkeys.UserRoleKey).(constants.Role)
	if !ok {
		return "", apperrors.ErrForbidden
	}
	return role, nil
}
