package pgrepo

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/fsdevblog/groph-bank/internal/domain"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	uniqueViolationCode   = "23505"
	lockNotAvailableCode  = "55P03"
	queryCanceledCode     = "57014" // statement_timeout / cancel
	foreignKeyViolationCd = "23503"
)

// convertErr преобразует ошибку к стандартному виду для слоя репозитория.
// Добавляет форматированное сообщение контекста, тип бизнес-ошибки и оригинальное сообщение.
// Особенности:
//   - Для ошибок отсутствия данных (pgx.ErrNoRows) возвращает ErrRecordNotFound из domain.
//   - Для дубликатов ключей (uniqueViolationCode) возвращает ErrDuplicateKey из domain.
//   - Таймаут ожидания строчной блокировки (lockNotAvailableCode) и отмена запроса маппятся
//     в ErrLockTimeout - вызывающая сторона может безопасно повторить операцию.
//   - Нарушение внешнего ключа трактуется как ErrRecordNotFound: ссылка на несуществующую сущность.
//   - Все остальные ошибки возвращаются как ErrUnknown с оригинальным сообщением.
//
// Используется для единообразной обработки и возврата ошибок из репозитория.
func convertErr(err error, format string, formatArgs ...any) error {
	if err == nil {
		return nil
	}

	msg := fmt.Sprintf(format, formatArgs...)

	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("[repository/%s] %w", msg, domain.ErrRecordNotFound)
	}

	var pgErr *pgconn.PgError
	errType := domain.ErrUnknown

	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case uniqueViolationCode:
			errType = domain.ErrDuplicateKey
		case lockNotAvailableCode, queryCanceledCode:
			errType = domain.ErrLockTimeout
		case foreignKeyViolationCd:
			return fmt.Errorf("[repository/%s] %w", msg, domain.ErrRecordNotFound)
		}
	}

	return fmt.Errorf("[repository/%s] %w: %s", msg, errType, err.Error())
}
