package middleware

import (
	"context"
	"net/http"
	"strings"
)

type contextKey string

const StudentIDKey contextKey = "student_id"

// StudentHeader carries the caller's student id.
const StudentHeader = "X-Student-ID"

// StudentContext stores the X-Student-ID header, when present, in the
// request context. Handlers fall back to it when the body names no student.
func StudentContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		studentID := strings.TrimSpace(r.Header.Get(StudentHeader))
		if studentID == "" {
			next.ServeHTTP(w, r)
			return
		}

		ctx := context.WithValue(r.Context(), StudentIDKey, studentID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetStudentID returns the student id from context.
func GetStudentID(ctx context.Context) string {
	studentID, _ := ctx.Value(StudentIDKey).(string)
	return studentID
}
