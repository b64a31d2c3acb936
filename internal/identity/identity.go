// Package identity carries the authenticated caller through the request.
// The core services never read ambient state; controllers extract the
// capability variant they need and pass plain ids down.
package identity

type Role string

const (
	RoleStudent    Role = "student"
	RoleInstructor Role = "instructor"
)

// Identity is the decoded token subject. StudentID is zero for instructors.
type Identity struct {
	UserID    uint
	Role      Role
	StudentID uint
}

// StudentIdentity is the capability required by the take-topic surface.
type StudentIdentity struct {
	StudentID uint
	UserID    uint
}

// InstructorIdentity is the capability required by the authoring surface.
type InstructorIdentity struct {
	UserID uint
}

// Student returns the student capability, or false for non-students.
func (i Identity) Student() (StudentIdentity, bool) {
	if i.Role != RoleStudent || i.StudentID == 0 {
		return StudentIdentity{}, false
	}
	return StudentIdentity{StudentID: i.StudentID, UserID: i.UserID}, true
}

// Instructor returns the instructor capability, or false for non-instructors.
func (i Identity) Instructor() (InstructorIdentity, bool) {
	if i.Role != RoleInstructor {
		return InstructorIdentity{}, false
	}
	return InstructorIdentity{UserID: i.UserID}, true
}
