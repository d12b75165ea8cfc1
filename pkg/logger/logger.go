// Package logger configura el logging estructurado del servicio sobre
// zerolog. Una sola instancia se crea en el arranque y se inyecta a los
// casos de uso que loguean (escáner de alertas, auditoría, main).
package logger

import (
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Config opciones del logger, tomadas de la configuración del servicio:
// Env viene de APP_ENV; Level es el nivel mínimo a emitir.
type Config struct {
	Env   string // "development" emite consola legible; cualquier otro valor, JSON
	Level string // trace, debug, info, warn, error (default info)
}

// Logger envuelve zerolog para inyectarlo por constructor en lugar de usar
// el global.
type Logger struct {
	zl zerolog.Logger
}

// New crea el logger del servicio y redirige además el global de zerolog,
// para que las librerías que escriben ahí salgan con el mismo formato.
func New(cfg Config) *Logger {
	var w io.Writer = os.Stdout
	if cfg.Env == "development" {
		w = zerolog.ConsoleWriter{Out: os.Stdout}
	}

	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zl := zerolog.New(w).Level(level).With().Timestamp().Logger()
	log.Logger = zl

	return &Logger{zl: zl}
}

func (l *Logger) Trace() *zerolog.Event { return l.zl.Trace() }
func (l *Logger) Debug() *zerolog.Event { return l.zl.Debug() }
func (l *Logger) Info() *zerolog.Event  { return l.zl.Info() }
func (l *Logger) Warn() *zerolog.Event  { return l.zl.Warn() }
func (l *Logger) Error() *zerolog.Event { return l.zl.Error() }
func (l *Logger) Fatal() *zerolog.Event { return l.zl.Fatal() }

// With crea un sublogger con campos fijos (ej. el componente que loguea).
func (l *Logger) With() zerolog.Context {
	return l.zl.With()
}

// Zerolog expone el logger interno para quien necesite la API directa.
func (l *Logger) Zerolog() zerolog.Logger {
	return l.zl
}
