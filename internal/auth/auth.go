package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// User roles.
const (
	RoleContributor   = "CONTRIBUTOR"
	RoleDecisionMaker = "DECISION_MAKER"
	RoleAdmin         = "ADMIN"
)

// Registration approval states.
const (
	ApprovalPending  = "PENDING"
	ApprovalApproved = "APPROVED"
	ApprovalRejected = "REJECTED"
)

// TokenTTL is how long an issued token stays valid.
const TokenTTL = 24 * time.Hour

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token expired")
)

// Principal is the verified identity carried by a bearer token. Every
// authorization check consumes this type; nothing else re-parses tokens.
type Principal struct {
	UserID      int64  `json:"userId"`
	Email       string `json:"email"`
	Role        string `json:"role"`
	EvaluatorID int64  `json:"evaluatorId,omitempty"`
	Name        string `json:"name,omitempty"`
}

// GenerateToken signs a token carrying the principal's identity.
func GenerateToken(p Principal, secret []byte) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"userId": p.UserID,
		"email":  p.Email,
		"role":   p.Role,
		"name":   p.Name,
		"iat":    now.Unix(),
		"exp":    now.Add(TokenTTL).Unix(),
	}
	if p.EvaluatorID != 0 {
		claims["evaluatorId"] = p.EvaluatorID
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// VerifyToken parses and validates a token string and returns the typed
// principal. Expired tokens are reported as ErrExpiredToken so callers
// can tell the user to log in again.
func VerifyToken(tokenString string, secret []byte) (*Principal, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	p := &Principal{}
	if v, ok := claims["userId"].(float64); ok {
		p.UserID = int64(v)
	}
	if v, ok := claims["email"].(string); ok {
		p.Email = v
	}
	if v, ok := claims["role"].(string); ok {
		p.Role = v
	}
	if v, ok := claims["evaluatorId"].(float64); ok {
		p.EvaluatorID = int64(v)
	}
	if v, ok := claims["name"].(string); ok {
		p.Name = v
	}
	if p.UserID == 0 || p.Email == "" || p.Role == "" {
		return nil, ErrInvalidToken
	}
	return p, nil
}

// HashPassword produces a bcrypt hash for storage.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword compares a candidate password against a stored hash.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
