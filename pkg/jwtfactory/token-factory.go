package jwtfactory

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-chi/jwtauth/v5"
)

const (
	UserIDClaimName = "user_id"
	RoleClaimName   = "role"

	UserRole  = "user"
	AdminRole = "admin"
)

var ErrNoSubject = errors.New("token carries no subject")

type Subject struct {
	Role   string
	UserID int64
}

func (s Subject) IsAdmin() bool {
	return s.Role == AdminRole
}

// CanAccess reports whether the subject may read the ledger of userID.
func (s Subject) CanAccess(userID int64) bool {
	return s.IsAdmin() || s.UserID == userID
}

type TokenFactory struct {
	tokenAuth           *jwtauth.JWTAuth
	tokenExpirationTime time.Duration
}

func New(tokenAuth *jwtauth.JWTAuth, tokenExpirationTime time.Duration) *TokenFactory {
	return &TokenFactory{
		tokenAuth:           tokenAuth,
		tokenExpirationTime: tokenExpirationTime,
	}
}

func (tf *TokenFactory) Generate(subject Subject) (string, error) {
	timeNow := time.Now()
	claims := map[string]any{
		UserIDClaimName: strconv.FormatInt(subject.UserID, 10),
		RoleClaimName:   subject.Role,
		"exp":           timeNow.Add(tf.tokenExpirationTime).Unix(),
		"iat":           timeNow.Unix(),
	}
	_, tokenString, err := tf.tokenAuth.Encode(claims)
	if err != nil {
		return "", fmt.Errorf("failed to encode token: %w", err)
	}
	return tokenString, nil
}

// SubjectFromContext reads the claims verified by jwtauth.Verifier.
func SubjectFromContext(ctx context.Context) (Subject, error) {
	_, claims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return Subject{}, fmt.Errorf("failed to read token claims: %w", err)
	}
	var subject Subject
	switch v := claims[UserIDClaimName].(type) {
	case string:
		subject.UserID, err = strconv.ParseInt(v, 10, 64)
		if err != nil {
			return Subject{}, fmt.Errorf("%w: %w", ErrNoSubject, err)
		}
	case float64:
		subject.UserID = int64(v)
	default:
		return Subject{}, ErrNoSubject
	}
	subject.Role, _ = claims[RoleClaimName].(string)
	if subject.Role == "" {
		subject.Role = UserRole
	}
	return subject, nil
}
