package httpserver

import "net/http"

// Routes groups handlers.
type Routes struct {
	Signup             http.HandlerFunc
	Login              http.HandlerFunc
	Checkout           http.HandlerFunc
	MidtransWebhook    http.HandlerFunc
	TripayWebhook      http.HandlerFunc
	LessonStatus       http.HandlerFunc
	MarkCompleted      http.HandlerFunc
	UpdateTimeSpent    http.HandlerFunc
	CourseProgress     http.HandlerFunc
	ExportTransactions http.HandlerFunc
	ActivateGateway    http.HandlerFunc
	Dashboard          http.HandlerFunc
	Health             http.HandlerFunc
}

// Middleware is a standard wrapping chain element.
type Middleware func(http.Handler) http.Handler

// NewRouter registers endpoints. Webhooks stay outside the auth chain: the
// gateway authenticates with its signature, not a bearer token.
func NewRouter(routes Routes, auth, admin Middleware) http.Handler {
	mux := http.NewServeMux()

	handle := func(pattern string, h http.HandlerFunc, mws ...Middleware) {
		if h == nil {
			return
		}
		var wrapped http.Handler = h
		for i := len(mws) - 1; i >= 0; i-- {
			wrapped = mws[i](wrapped)
		}
		mux.Handle(pattern, wrapped)
	}

	handle("POST /api/auth/signup", routes.Signup)
	handle("POST /api/auth/login", routes.Login)

	handle("POST /webhooks/midtrans", routes.MidtransWebhook)
	handle("POST /webhooks/tripay", routes.TripayWebhook)

	handle("POST /api/checkout", routes.Checkout, auth)
	handle("GET /api/courses/{courseID}/lessons/{lessonID}/progress", routes.LessonStatus, auth)
	handle("POST /api/courses/{courseID}/lessons/{lessonID}/complete", routes.MarkCompleted, auth)
	handle("POST /api/courses/{courseID}/lessons/{lessonID}/time-spent", routes.UpdateTimeSpent, auth)
	handle("GET /api/courses/{courseID}/progress", routes.CourseProgress, auth)

	handle("GET /api/admin/transactions/export", routes.ExportTransactions, auth, admin)
	handle("PUT /api/admin/gateways/{id}/activate", routes.ActivateGateway, auth, admin)

	handle("GET /ws/dashboard", routes.Dashboard, auth)
	handle("GET /health", routes.Health)

	return mux
}
