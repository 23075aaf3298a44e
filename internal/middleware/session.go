package middleware

import "net/http"

// SessionChecker сообщает, есть ли действующая сессия кухни.
type SessionChecker interface {
	IsAuthenticated() bool
}

// RequireSession закрывает маршруты дисплея, пока кухня не вошла в систему.
func RequireSession(sessions SessionChecker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !sessions.IsAuthenticated() {
				http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
