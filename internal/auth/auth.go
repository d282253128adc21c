package auth

import (
	"errors"
	"strings"
	"time"

	"assignment-service/internal/config"
	"assignment-service/internal/domain"
	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidCredentials is returned when a login does not match the configured users.
var ErrInvalidCredentials = errors.New("invalid credentials")

// Claims carries the caller identity inside a session token.
type Claims struct {
	Role      domain.Role `json:"role"`
	Name      string      `json:"name"`
	StudentID string      `json:"studentId,omitempty"`
	Mobile    string      `json:"mobile,omitempty"`
	jwt.RegisteredClaims
}

// Identity converts the claims into the value passed to the service.
func (c *Claims) Identity() domain.Identity {
	return domain.Identity{Role: c.Role, Name: c.Name, StudentID: c.StudentID, Mobile: c.Mobile}
}

// Authenticator checks logins against configured credentials and issues
// HS256 session tokens.
type Authenticator struct {
	cfg    config.Auth
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewAuthenticator(cfg config.Auth) *Authenticator {
	return &Authenticator{
		cfg:    cfg,
		secret: []byte(cfg.Secret),
		ttl:    config.TTLDuration(cfg.TokenTTL, 7*24*time.Hour),
		now:    time.Now,
	}
}

// LoginTeacher authenticates the teacher by mobile number.
func (a *Authenticator) LoginTeacher(mobile string) (domain.Identity, error) {
	if a.cfg.Teacher.Mobile == "" || mobile != a.cfg.Teacher.Mobile {
		return domain.Identity{}, ErrInvalidCredentials
	}
	name := a.cfg.Teacher.Name
	if name == "" {
		name = "Teacher"
	}
	return domain.Identity{Role: domain.RoleTeacher, Name: name, Mobile: mobile}, nil
}

// LoginStudent authenticates a student by name (case-insensitive) and student id.
func (a *Authenticator) LoginStudent(name, studentID string) (domain.Identity, error) {
	for _, s := range a.cfg.Students {
		if strings.EqualFold(s.Name, strings.TrimSpace(name)) && s.StudentID == studentID {
			return domain.Identity{Role: domain.RoleStudent, Name: s.Name, StudentID: s.StudentID}, nil
		}
	}
	return domain.Identity{}, ErrInvalidCredentials
}

// Issue signs a session token for id.
func (a *Authenticator) Issue(id domain.Identity) (string, error) {
	now := a.now()
	claims := &Claims{
		Role:      id.Role,
		Name:      id.Name,
		StudentID: id.StudentID,
		Mobile:    id.Mobile,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(a.secret)
}

// Verify parses a session token and returns the identity it carries.
func (a *Authenticator) Verify(tokenStr string) (domain.Identity, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		return a.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(a.now),
	)
	if err != nil {
		return domain.Identity{}, err
	}
	if !token.Valid {
		return domain.Identity{}, errors.New("invalid token")
	}
	return claims.Identity(), nil
}
