package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/codecat-lms/codecat/config"
	"github.com/codecat-lms/codecat/internal/dto"
	"github.com/codecat-lms/codecat/internal/identity"
	"github.com/codecat-lms/codecat/internal/model"
	"github.com/codecat-lms/codecat/internal/repository"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// AuthService registers users, verifies credentials and issues the JWTs the
// middleware turns into an identity.
type AuthService interface {
	RegisterStudent(req dto.SignUpRequest) (*dto.TokenResponse, error)
	RegisterInstructor(req dto.SignUpRequest) (*dto.TokenResponse, error)
	Login(req dto.LoginRequest) (*dto.TokenResponse, error)
	ParseToken(tokenString string) (identity.Identity, error)
}

type authService struct {
	userRepo    repository.UserRepository
	studentRepo repository.StudentRepository
	cfg         *config.Config
}

func NewAuthService(userRepo repository.UserRepository, studentRepo repository.StudentRepository, cfg *config.Config) AuthService {
	return &authService{userRepo: userRepo, studentRepo: studentRepo, cfg: cfg}
}

func (s *authService) RegisterStudent(req dto.SignUpRequest) (*dto.TokenResponse, error) {
	user, err := s.register(req, model.RoleStudent)
	if err != nil {
		return nil, err
	}
	student := model.Student{UserID: user.ID}
	if err := s.studentRepo.Create(&student); err != nil {
		log.Error().Err(err).Uint("userID", user.ID).Msg("RegisterStudent: failed to create student profile")
		return nil, fmt.Errorf("creating student profile: %w", err)
	}
	return s.issueToken(user, student.ID)
}

func (s *authService) RegisterInstructor(req dto.SignUpRequest) (*dto.TokenResponse, error) {
	user, err := s.register(req, model.RoleInstructor)
	if err != nil {
		return nil, err
	}
	return s.issueToken(user, 0)
}

func (s *authService) register(req dto.SignUpRequest, role string) (*model.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	user := model.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: string(hash),
		Role:         role,
	}
	if err := s.userRepo.Create(&user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("username %q is taken: %w", req.Username, ErrValidation)
		}
		log.Error().Err(err).Str("username", req.Username).Msg("register: failed to create user")
		return nil, fmt.Errorf("creating user: %w", err)
	}

	log.Info().Uint("userID", user.ID).Str("role", role).Msg("User registered")
	return &user, nil
}

func (s *authService) Login(req dto.LoginRequest) (*dto.TokenResponse, error) {
	user, err := s.userRepo.FindByUsername(req.Username)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("invalid credentials: %w", ErrValidation)
	}
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, fmt.Errorf("invalid credentials: %w", ErrValidation)
	}

	var studentID uint
	if user.Role == model.RoleStudent {
		student, err := s.studentRepo.FindByUserID(user.ID)
		if err != nil {
			log.Error().Err(err).Uint("userID", user.ID).Msg("Login: student profile missing")
			return nil, fmt.Errorf("loading student profile: %w", err)
		}
		studentID = student.ID
	}
	return s.issueToken(user, studentID)
}

func (s *authService) issueToken(user *model.User, studentID uint) (*dto.TokenResponse, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":        user.ID,
		"role":       user.Role,
		"student_id": studentID,
		"iat":        now.Unix(),
		"exp":        now.Add(time.Duration(s.cfg.Auth.TokenTTLMin) * time.Minute).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.Auth.JWTSecret))
	if err != nil {
		return nil, fmt.Errorf("signing token: %w", err)
	}
	return &dto.TokenResponse{Token: signed, Role: user.Role}, nil
}

func (s *authService) ParseToken(tokenString string) (identity.Identity, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(s.cfg.Auth.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return identity.Identity{}, fmt.Errorf("invalid token: %w", ErrValidation)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return identity.Identity{}, fmt.Errorf("invalid token claims: %w", ErrValidation)
	}

	userID, _ := claims["sub"].(float64)
	role, _ := claims["role"].(string)
	studentID, _ := claims["student_id"].(float64)

	return identity.Identity{
		UserID:    uint(userID),
		Role:      identity.Role(role),
		StudentID: uint(studentID),
	}, nil
}
