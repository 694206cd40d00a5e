package jwttoken

import (
	authmw "regsync/pkg/platform/middleware/auth"
)

// Authenticate validates tokenString for the auth middleware, which only
// needs the subject and role.
func (s *JWTService) Authenticate(tokenString string) (authmw.Principal, error) {
	claims, err := s.ValidateToken(tokenString)
	if err != nil {
		return authmw.Principal{}, err
	}
	return authmw.Principal{UserID: claims.Subject, Role: claims.Role}, nil
}
