package middleware

import (
	"net/http"
	"time"

	"github.com/Abdurahmanit/GroupProject/housing-service/internal/housing/session"
	"github.com/Abdurahmanit/GroupProject/housing-service/internal/platform/logger"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// Logger logs one line per request once the response is written. Mount it after
// OptionalAuth so the user id is known.
func Logger(log *logger.Logger) func(http.Handler) http.Handler {
	log = log.Named("HTTP")
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			fields := []zap.Field{
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", chimw.GetReqID(r.Context())),
			}
			if userID := session.UserID(r.Context()); userID != "" {
				fields = append(fields, zap.String("user_id", userID))
			}
			switch {
			case ww.Status() >= http.StatusInternalServerError:
				log.Error("Request failed", fields...)
			case ww.Status() >= http.StatusBadRequest:
				log.Warn("Request rejected", fields...)
			default:
				log.Info("Request served", fields...)
			}
		})
	}
}
