package models

import "time"

// MarkerKind discriminates who recorded an attendance event.
type MarkerKind string

const (
	MarkerTeacher MarkerKind = "teacher"
	MarkerAdmin   MarkerKind = "admin"
)

// Marker identifies the author of an attendance mark. It is either a
// reference to a teacher record or an opaque administrative role label
// for marks entered outside the teaching staff.
type Marker struct {
	Kind      MarkerKind `json:"kind"`
	TeacherID string     `json:"teacherId,omitempty"`
	RoleLabel string     `json:"roleLabel,omitempty"`
}

// TeacherMarker builds a marker referencing a teacher record.
func TeacherMarker(teacherID string) Marker {
	return Marker{Kind: MarkerTeacher, TeacherID: teacherID}
}

// AdminMarker builds a marker carrying an administrative role label.
func AdminMarker(roleLabel string) Marker {
	return Marker{Kind: MarkerAdmin, RoleLabel: roleLabel}
}

// Valid returns true when the marker carries a recognised kind.
func (m Marker) Valid() bool {
	switch m.Kind {
	case MarkerTeacher:
		return m.TeacherID != ""
	case MarkerAdmin:
		return m.RoleLabel != ""
	default:
		return false
	}
}

// AttendanceEvent is one recorded presence/absence mark for a student in
// a subject on a date, enriched with the resolved entity identities.
// Nil reference fields mark relations that could not be resolved.
type AttendanceEvent struct {
	ID          string    `db:"id" json:"id"`
	StudentID   *string   `db:"student_id" json:"studentId"`
	StudentName *string   `db:"student_name" json:"studentName,omitempty"`
	RollNumber  *string   `db:"roll_number" json:"rollNumber,omitempty"`
	SubjectID   *string   `db:"subject_id" json:"subjectId"`
	SubjectName *string   `db:"subject_name" json:"subjectName,omitempty"`
	CourseID    *string   `db:"course_id" json:"courseId"`
	CourseName  *string   `db:"course_name" json:"courseName,omitempty"`
	Date        time.Time `db:"date" json:"date"`
	Present     bool      `db:"present" json:"present"`
	MarkedBy    Marker    `db:"-" json:"markedBy"`
}

// AttendanceEventFilter scopes event store queries. Empty string or nil
// fields mean no constraint on that dimension.
type AttendanceEventFilter struct {
	CourseID  string
	SubjectID string
	StudentID string
	DateFrom  *time.Time
	DateTo    *time.Time
}

// CourseRef is a lightweight course descriptor for filter option lists.
type CourseRef struct {
	ID   string `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}

// SubjectRef is a lightweight subject descriptor for filter option lists.
type SubjectRef struct {
	ID       string  `db:"id" json:"id"`
	Name     string  `db:"name" json:"name"`
	CourseID *string `db:"course_id" json:"courseId,omitempty"`
}
