package middleware

import (
	"github.com/go-chi/cors"
)

// NewCORS builds the CORS policy for the API. Only the methods the
// router actually serves are allowed; PUT is absent because the ledger
// has no update endpoints.
func NewCORS(allowedOrigins []string) *cors.Cors {
	return cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		ExposedHeaders:   []string{"Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	})
}
