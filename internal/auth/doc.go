// Package auth provides authentication for the application.
//
// Two mechanisms coexist:
//   - Bearer JWTs for the JSON API. POST /api/auth/login returns a signed
//     token; clients send it back as "Authorization: Bearer <token>".
//   - Cookie sessions (SQLite-backed) for the server-rendered web UI,
//     protected by CSRF tokens on form submissions.
//
// # Configuration
//
//	AUTH_JWT_SECRET=<secret>               # Auto-generated if empty (tokens won't survive restarts)
//	AUTH_TOKEN_EXPIRY=168h                 # JWT lifetime (7 days default)
//	AUTH_SESSION_SECRET=<base64-32-bytes>  # Auto-generated if empty
//	AUTH_SESSION_LIFETIME=24h              # Session duration
//	AUTH_BCRYPT_COST=10                    # bcrypt cost factor
//	AUTH_SECURE_COOKIES=true               # HTTPS-only cookies
//
// # Usage
//
// Initialize in entrypoint:
//
//	authService := auth.NewService(userRepo, cfg.Auth)
//	authMiddleware := auth.NewMiddleware(authService, sessionManager)
//	router.Use(authMiddleware.Handler())
//
// Extract the user in handlers:
//
//	userID := auth.GetUserID(c)
package auth
