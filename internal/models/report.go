package models

// SubjectDetail is a per-subject attendance breakdown nested under a
// single student.
type SubjectDetail struct {
	SubjectID            string  `json:"subjectId"`
	SubjectName          string  `json:"subjectName"`
	TotalClasses         int     `json:"totalClasses"`
	PresentClasses       int     `json:"presentClasses"`
	AbsentClasses        int     `json:"absentClasses"`
	AttendancePercentage float64 `json:"attendancePercentage"`
}

// StudentAggregate summarises one student's attendance across the
// filtered window, with a per-subject breakdown.
type StudentAggregate struct {
	StudentID            string          `json:"studentId"`
	StudentName          string          `json:"studentName"`
	RollNumber           string          `json:"rollNumber"`
	CourseID             string          `json:"courseId,omitempty"`
	CourseName           string          `json:"courseName,omitempty"`
	TotalClasses         int             `json:"totalClasses"`
	PresentClasses       int             `json:"presentClasses"`
	AbsentClasses        int             `json:"absentClasses"`
	AttendancePercentage float64         `json:"attendancePercentage"`
	Subjects             []SubjectDetail `json:"subjects"`
}

// SubjectAggregate summarises all events touching one subject.
type SubjectAggregate struct {
	SubjectID            string  `json:"subjectId"`
	SubjectName          string  `json:"subjectName"`
	TotalClasses         int     `json:"totalClasses"`
	DistinctStudentCount int     `json:"distinctStudentCount"`
	PresentCount         int     `json:"presentCount"`
	AbsentCount          int     `json:"absentCount"`
	AttendancePercentage float64 `json:"attendancePercentage"`
}

// CourseAggregate summarises all events whose subject belongs to one course.
type CourseAggregate struct {
	CourseID             string  `json:"courseId"`
	CourseName           string  `json:"courseName"`
	TotalClasses         int     `json:"totalClasses"`
	DistinctStudentCount int     `json:"distinctStudentCount"`
	PresentCount         int     `json:"presentCount"`
	AbsentCount          int     `json:"absentCount"`
	AttendancePercentage float64 `json:"attendancePercentage"`
}

// ReportFilterOptions lists the catalog entries used to populate report
// filter dropdowns, independent of the active filter.
type ReportFilterOptions struct {
	Courses  []CourseRef  `json:"courses"`
	Subjects []SubjectRef `json:"subjects"`
}

// AttendanceReport is the assembled reporting payload. Every slice is
// always present, possibly empty, never nil.
type AttendanceReport struct {
	Attendance   []AttendanceEvent   `json:"attendance"`
	StudentStats []StudentAggregate  `json:"studentStats"`
	SubjectStats []SubjectAggregate  `json:"subjectStats"`
	CourseStats  []CourseAggregate   `json:"courseStats"`
	Filters      ReportFilterOptions `json:"filters"`
}
