// Package audit implementa el sink de auditoría fire-and-forget: registrar
// una acción de negocio jamás puede hacer fallar (ni revertir) la
// transacción que la originó.
package audit

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/farmacia-pos/internal/domain/entity"
	"github.com/jhoicas/farmacia-pos/internal/domain/repository"
	"github.com/jhoicas/farmacia-pos/pkg/logger"
)

// Recorder escribe entradas en activity_log en segundo plano.
type Recorder struct {
	repo repository.ActivityLogRepository
	log  *logger.Logger
}

// NewRecorder construye el recorder.
func NewRecorder(repo repository.ActivityLogRepository, log *logger.Logger) *Recorder {
	return &Recorder{repo: repo, log: log}
}

// Record encola la escritura del registro. El action se normaliza a
// minúsculas con guiones bajos; details se serializa a JSON. Un fallo al
// insertar solo se loguea.
func (r *Recorder) Record(userID, username, action string, details map[string]any) {
	entry := &entity.ActivityLogEntry{
		ID:        uuid.New().String(),
		UserID:    userID,
		Username:  username,
		Action:    strings.ToLower(strings.ReplaceAll(action, " ", "_")),
		CreatedAt: time.Now(),
	}
	if details != nil {
		if raw, err := json.Marshal(details); err == nil {
			entry.Details = string(raw)
		}
	}
	go func() {
		if err := r.repo.Insert(entry); err != nil {
			r.log.Warn().Err(err).Str("action", entry.Action).Msg("no se pudo escribir el registro de auditoría")
		}
	}()
}
