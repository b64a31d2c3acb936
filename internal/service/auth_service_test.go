package service

import (
	"errors"
	"testing"

	"github.com/codecat-lms/codecat/config"
	"github.com/codecat-lms/codecat/internal/dto"
	"github.com/codecat-lms/codecat/internal/identity"
	"github.com/codecat-lms/codecat/internal/model"
	"gorm.io/gorm"
)

type fakeUserRepo struct {
	users  map[uint]model.User
	nextID uint
}

func (r *fakeUserRepo) Create(user *model.User) error {
	for _, u := range r.users {
		if u.Username == user.Username {
			return gorm.ErrDuplicatedKey
		}
	}
	r.nextID++
	user.ID = r.nextID
	r.users[user.ID] = *user
	return nil
}

func (r *fakeUserRepo) FindByID(id uint) (*model.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &u, nil
}

func (r *fakeUserRepo) FindByUsername(username string) (*model.User, error) {
	for _, u := range r.users {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

type fakeStudentRepo struct {
	students map[uint]model.Student
	nextID   uint
}

func (r *fakeStudentRepo) Create(student *model.Student) error {
	r.nextID++
	student.ID = r.nextID
	r.students[student.ID] = *student
	return nil
}

func (r *fakeStudentRepo) FindByID(id uint) (*model.Student, error) {
	s, ok := r.students[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &s, nil
}

func (r *fakeStudentRepo) FindByUserID(userID uint) (*model.Student, error) {
	for _, s := range r.students {
		if s.UserID == userID {
			return &s, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeStudentRepo) FindEnrolledCourseIDs(studentID uint) ([]uint, error) { return nil, nil }

func newAuthFixture() AuthService {
	cfg := &config.Config{}
	cfg.Auth.JWTSecret = "test-secret"
	cfg.Auth.TokenTTLMin = 5
	return NewAuthService(
		&fakeUserRepo{users: map[uint]model.User{}},
		&fakeStudentRepo{students: map[uint]model.Student{}},
		cfg,
	)
}

func TestStudentSignupLoginRoundTrip(t *testing.T) {
	svc := newAuthFixture()

	signUp := dto.SignUpRequest{Username: "ada", Email: "ada@example.com", Password: "correct horse"}
	token, err := svc.RegisterStudent(signUp)
	if err != nil {
		t.Fatalf("RegisterStudent: %v", err)
	}
	if token.Role != model.RoleStudent {
		t.Errorf("role = %q, want student", token.Role)
	}

	login, err := svc.Login(dto.LoginRequest{Username: "ada", Password: "correct horse"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	ident, err := svc.ParseToken(login.Token)
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}
	student, ok := ident.Student()
	if !ok {
		t.Fatal("expected student capability")
	}
	if student.StudentID == 0 {
		t.Error("student id missing from token")
	}
	if _, ok := ident.Instructor(); ok {
		t.Error("student token must not grant instructor capability")
	}
}

func TestInstructorTokenLacksStudentCapability(t *testing.T) {
	svc := newAuthFixture()

	token, err := svc.RegisterInstructor(dto.SignUpRequest{Username: "grace", Email: "g@example.com", Password: "hopperhopper"})
	if err != nil {
		t.Fatalf("RegisterInstructor: %v", err)
	}

	ident, err := svc.ParseToken(token.Token)
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}
	if _, ok := ident.Student(); ok {
		t.Error("instructor token must not grant student capability")
	}
	if _, ok := ident.Instructor(); !ok {
		t.Error("expected instructor capability")
	}
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	svc := newAuthFixture()

	if _, err := svc.RegisterStudent(dto.SignUpRequest{Username: "ada", Email: "a@example.com", Password: "correct horse"}); err != nil {
		t.Fatalf("RegisterStudent: %v", err)
	}

	if _, err := svc.Login(dto.LoginRequest{Username: "ada", Password: "battery staple"}); !errors.Is(err, ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
}

func TestDuplicateUsernameRejected(t *testing.T) {
	svc := newAuthFixture()

	req := dto.SignUpRequest{Username: "ada", Email: "a@example.com", Password: "correct horse"}
	if _, err := svc.RegisterStudent(req); err != nil {
		t.Fatalf("first signup: %v", err)
	}
	if _, err := svc.RegisterInstructor(req); !errors.Is(err, ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
}

func TestParseTokenRejectsGarbage(t *testing.T) {
	svc := newAuthFixture()

	if _, err := svc.ParseToken("not.a.token"); !errors.Is(err, ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}

	var zero identity.Identity
	ident, _ := svc.ParseToken("")
	if ident != zero {
		t.Errorf("identity from empty token = %+v, want zero value", ident)
	}
}
