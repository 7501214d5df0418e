package middleware

import (
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/mssola/useragent"

	"proofguard/pkg/domain"
	"proofguard/pkg/requestcontext"
)

// RequestContext stamps request-scoped facts (time, ID, client IP, device)
// into the context so services never reach for ambient globals.
func RequestContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		ctx = requestcontext.WithTime(ctx, time.Now())
		ctx = requestcontext.WithRequestID(ctx, uuid.NewString())
		ctx = requestcontext.WithClientIP(ctx, clientIP(r))

		if ua := r.UserAgent(); ua != "" {
			ctx = requestcontext.WithUserAgent(ctx, ua)
			ctx = requestcontext.WithDevice(ctx, deviceSummary(ua))
		}

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequirePrincipal extracts the authenticated principal forwarded by the
// upstream gateway. Authentication itself is out of scope for this service;
// requests without a complete principal are rejected.
func RequirePrincipal(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, err := domain.ParseUserID(r.Header.Get("X-User-ID"))
			if err != nil {
				logger.Warn("request rejected: missing or invalid user id", "path", r.URL.Path)
				unauthorized(w)
				return
			}
			companyID, err := domain.ParseCompanyID(r.Header.Get("X-Company-ID"))
			if err != nil {
				logger.Warn("request rejected: missing or invalid company id", "path", r.URL.Path)
				unauthorized(w)
				return
			}

			principal := domain.Principal{
				UserID:    userID,
				CompanyID: companyID,
				Role:      domain.Role(r.Header.Get("X-Role")),
			}
			ctx := requestcontext.WithPrincipal(r.Context(), principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Logger records one line per request.
func Logger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			logger.Info("request",
				"method", r.Method,
				"path", r.URL.Path,
				"request_id", requestcontext.RequestID(r.Context()),
				"duration_ms", time.Since(start).Milliseconds(),
			)
		})
	}
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		return fwd
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// deviceSummary condenses the User-Agent into "browser/os" for consent and
// security event evidence.
func deviceSummary(ua string) string {
	parsed := useragent.New(ua)
	name, _ := parsed.Browser()
	os := parsed.OS()
	if name == "" && os == "" {
		return ""
	}
	return name + "/" + os
}

func unauthorized(w http.ResponseWriter) {
	http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
}
