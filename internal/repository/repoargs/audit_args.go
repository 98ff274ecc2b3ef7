package repoargs

import (
	"time"

	"github.com/fsdevblog/groph-bank/internal/domain"
)

type AuditEntryCreate struct {
	Principal      string
	Action         domain.AuditActionType
	AffectedEntity string
	AffectedID     int64
	OldValue       *string
	NewValue       *string
	Origin         *string
}

// AuditQuery параметры выборки журнала аудита. Zero-value End трактуется репозиторием как "до
// текущего момента".
type AuditQuery struct {
	Start     time.Time
	End       time.Time
	Principal *string
}
