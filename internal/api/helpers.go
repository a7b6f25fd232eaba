package api

import (
	"context"
	"strings"

	"github.com/danielgtaylor/huma/v2"
)

// authenticateRequest validates the Authorization header and returns the user ID.
func (s *Server) authenticateRequest(ctx context.Context, authHeader string) (string, error) {
	if authHeader == "" {
		return "", huma.Error401Unauthorized("Missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", huma.Error401Unauthorized("Invalid authorization header format")
	}

	user, _, err := s.services.Auth.VerifyAccessToken(ctx, parts[1])
	if err != nil {
		return "", huma.Error401Unauthorized("Invalid or expired token")
	}

	return user.ID, nil
}

// optionalAuthenticate resolves the Authorization header to a user ID when
// present and valid, and returns empty otherwise. Public endpoints use it
// to personalize responses for logged-in callers without requiring auth.
func (s *Server) optionalAuthenticate(ctx context.Context, authHeader string) string {
	if authHeader == "" {
		return ""
	}
	userID, err := s.authenticateRequest(ctx, authHeader)
	if err != nil {
		return ""
	}
	return userID
}

// extractIP picks the client IP for rate limiting, preferring proxy headers.
func extractIP(xForwardedFor, xRealIP string) string {
	if xForwardedFor != "" {
		// First entry in the chain is the client.
		if i := strings.IndexByte(xForwardedFor, ','); i >= 0 {
			return strings.TrimSpace(xForwardedFor[:i])
		}
		return strings.TrimSpace(xForwardedFor)
	}
	return xRealIP
}
