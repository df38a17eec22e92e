package service

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campuskit/attendance-report-api/internal/models"
)

func strPtr(s string) *string {
	return &s
}

func makeEvent(studentID, subjectID, courseID string, present bool) models.AttendanceEvent {
	ev := models.AttendanceEvent{
		ID:       "ev-" + studentID + "-" + subjectID,
		Date:     time.Date(2024, 9, 2, 0, 0, 0, 0, time.UTC),
		Present:  present,
		MarkedBy: models.TeacherMarker("teacher-1"),
	}
	if studentID != "" {
		ev.StudentID = strPtr(studentID)
		ev.StudentName = strPtr("Student " + studentID)
		ev.RollNumber = strPtr("R-" + studentID)
	}
	if subjectID != "" {
		ev.SubjectID = strPtr(subjectID)
		ev.SubjectName = strPtr("Subject " + subjectID)
	}
	if courseID != "" {
		ev.CourseID = strPtr(courseID)
		ev.CourseName = strPtr("Course " + courseID)
	}
	return ev
}

func repeatEvents(studentID, subjectID, courseID string, present, absent int) []models.AttendanceEvent {
	events := make([]models.AttendanceEvent, 0, present+absent)
	for i := 0; i < present; i++ {
		events = append(events, makeEvent(studentID, subjectID, courseID, true))
	}
	for i := 0; i < absent; i++ {
		events = append(events, makeEvent(studentID, subjectID, courseID, false))
	}
	return events
}

func assertInvariants(t *testing.T, report *models.AttendanceReport) {
	t.Helper()
	for _, stat := range report.StudentStats {
		assert.Equal(t, stat.TotalClasses, stat.PresentClasses+stat.AbsentClasses)
		assert.GreaterOrEqual(t, stat.AttendancePercentage, 0.0)
		assert.LessOrEqual(t, stat.AttendancePercentage, 100.0)
		for _, detail := range stat.Subjects {
			assert.Equal(t, detail.TotalClasses, detail.PresentClasses+detail.AbsentClasses)
		}
	}
	for _, stat := range report.SubjectStats {
		assert.Equal(t, stat.TotalClasses, stat.PresentCount+stat.AbsentCount)
		assert.LessOrEqual(t, stat.DistinctStudentCount, stat.TotalClasses)
		assert.GreaterOrEqual(t, stat.AttendancePercentage, 0.0)
		assert.LessOrEqual(t, stat.AttendancePercentage, 100.0)
	}
	for _, stat := range report.CourseStats {
		assert.Equal(t, stat.TotalClasses, stat.PresentCount+stat.AbsentCount)
		assert.LessOrEqual(t, stat.DistinctStudentCount, stat.TotalClasses)
		assert.GreaterOrEqual(t, stat.AttendancePercentage, 0.0)
		assert.LessOrEqual(t, stat.AttendancePercentage, 100.0)
	}
}

func TestAggregateBasicSplit(t *testing.T) {
	events := append(
		repeatEvents("stu-1", "sub-1", "course-1", 4, 2),
		repeatEvents("stu-2", "sub-1", "course-1", 3, 1)...,
	)
	require.Len(t, events, 10)

	res := aggregateAttendance(events)
	report := assembleReport(res, events, nil, nil)

	require.Len(t, report.SubjectStats, 1)
	subject := report.SubjectStats[0]
	assert.Equal(t, "sub-1", subject.SubjectID)
	assert.Equal(t, 10, subject.TotalClasses)
	assert.Equal(t, 7, subject.PresentCount)
	assert.Equal(t, 3, subject.AbsentCount)
	assert.Equal(t, 70.00, subject.AttendancePercentage)
	assert.Equal(t, 2, subject.DistinctStudentCount)
	assertInvariants(t, report)
}

func TestAggregateStudentCrossSubjectRollup(t *testing.T) {
	events := append(
		repeatEvents("stu-1", "sub-a", "course-1", 3, 1),
		repeatEvents("stu-1", "sub-b", "course-1", 2, 4)...,
	)

	res := aggregateAttendance(events)
	report := assembleReport(res, events, nil, nil)

	require.Len(t, report.StudentStats, 1)
	student := report.StudentStats[0]
	assert.Equal(t, 10, student.TotalClasses)
	assert.Equal(t, 5, student.PresentClasses)
	assert.Equal(t, 5, student.AbsentClasses)
	assert.Equal(t, 50.00, student.AttendancePercentage)

	require.Len(t, student.Subjects, 2)
	assert.Equal(t, "sub-a", student.Subjects[0].SubjectID)
	assert.Equal(t, 75.00, student.Subjects[0].AttendancePercentage)
	assert.Equal(t, "sub-b", student.Subjects[1].SubjectID)
	assert.Equal(t, 33.33, student.Subjects[1].AttendancePercentage)
	assertInvariants(t, report)
}

func TestAggregateCourseRollupFromSubjects(t *testing.T) {
	events := []models.AttendanceEvent{}
	// subject A: stu-1 three events (all present), stu-2 two events (1 present, 1 absent)
	events = append(events, repeatEvents("stu-1", "sub-a", "course-1", 3, 0)...)
	events = append(events, repeatEvents("stu-2", "sub-a", "course-1", 1, 1)...)
	// subject B: stu-1 two events (all present), stu-3 three events (2 present, 1 absent)
	events = append(events, repeatEvents("stu-1", "sub-b", "course-1", 2, 0)...)
	events = append(events, repeatEvents("stu-3", "sub-b", "course-1", 2, 1)...)

	res := aggregateAttendance(events)
	report := assembleReport(res, events, nil, nil)

	require.Len(t, report.CourseStats, 1)
	course := report.CourseStats[0]
	assert.Equal(t, 10, course.TotalClasses)
	assert.Equal(t, 8, course.PresentCount)
	assert.Equal(t, 2, course.AbsentCount)
	assert.Equal(t, 80.00, course.AttendancePercentage)
	// union of {stu-1, stu-2} and {stu-1, stu-3}, not the sum
	assert.Equal(t, 3, course.DistinctStudentCount)
	assertInvariants(t, report)
}

func TestAggregateSkipsUnresolvedReferences(t *testing.T) {
	clean := append(
		repeatEvents("stu-1", "sub-1", "course-1", 2, 1),
		repeatEvents("stu-2", "sub-2", "course-1", 1, 1)...,
	)
	dirty := append([]models.AttendanceEvent{}, clean...)
	dirty = append(dirty, makeEvent("", "sub-1", "course-1", true))
	dirty = append(dirty, makeEvent("stu-1", "", "", false))

	cleanRes := aggregateAttendance(clean)
	dirtyRes := aggregateAttendance(dirty)

	assert.Equal(t, 0, cleanRes.skipped)
	assert.Equal(t, 2, dirtyRes.skipped)

	cleanReport := assembleReport(cleanRes, clean, nil, nil)
	dirtyReport := assembleReport(dirtyRes, dirty, nil, nil)

	assert.Equal(t, cleanReport.StudentStats, dirtyReport.StudentStats)
	assert.Equal(t, cleanReport.SubjectStats, dirtyReport.SubjectStats)
	assert.Equal(t, cleanReport.CourseStats, dirtyReport.CourseStats)
	// the raw event list still carries the skipped marks
	assert.Len(t, dirtyReport.Attendance, len(dirty))
}

func TestAggregateEventWithoutCourseCountsStudentAndSubject(t *testing.T) {
	events := []models.AttendanceEvent{makeEvent("stu-1", "sub-1", "", true)}

	res := aggregateAttendance(events)
	report := assembleReport(res, events, nil, nil)

	assert.Len(t, report.StudentStats, 1)
	assert.Len(t, report.SubjectStats, 1)
	assert.Empty(t, report.CourseStats)
}

func TestAggregateDoesNotDeduplicate(t *testing.T) {
	ev := makeEvent("stu-1", "sub-1", "course-1", true)
	events := []models.AttendanceEvent{ev, ev}

	res := aggregateAttendance(events)
	report := assembleReport(res, events, nil, nil)

	require.Len(t, report.SubjectStats, 1)
	assert.Equal(t, 2, report.SubjectStats[0].TotalClasses)
	assert.Equal(t, 1, report.SubjectStats[0].DistinctStudentCount)
}

func TestAggregateIdempotent(t *testing.T) {
	events := append(
		repeatEvents("stu-1", "sub-a", "course-1", 3, 2),
		repeatEvents("stu-2", "sub-b", "course-2", 4, 1)...,
	)
	first := assembleReport(aggregateAttendance(events), events, nil, nil)
	second := assembleReport(aggregateAttendance(events), events, nil, nil)

	firstJSON, err := json.Marshal(first)
	require.NoError(t, err)
	secondJSON, err := json.Marshal(second)
	require.NoError(t, err)
	assert.Equal(t, firstJSON, secondJSON)
}

func TestAssembleEmptyReport(t *testing.T) {
	res := aggregateAttendance(nil)
	report := assembleReport(res, nil, nil, nil)

	assert.NotNil(t, report.Attendance)
	assert.NotNil(t, report.StudentStats)
	assert.NotNil(t, report.SubjectStats)
	assert.NotNil(t, report.CourseStats)
	assert.NotNil(t, report.Filters.Courses)
	assert.NotNil(t, report.Filters.Subjects)
	assert.Empty(t, report.Attendance)
	assert.Empty(t, report.StudentStats)
}

func TestPercentage(t *testing.T) {
	cases := []struct {
		name     string
		present  int
		absent   int
		expected float64
	}{
		{"zero denominator", 0, 0, 0},
		{"all present", 5, 0, 100.00},
		{"all absent", 0, 5, 0.00},
		{"basic split", 7, 3, 70.00},
		{"repeating decimal", 2, 4, 33.33},
		{"rounds up", 2, 1, 66.67},
		{"small fraction", 1, 8, 11.11},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, percentage(tc.present, tc.absent))
		})
	}
}

func TestRound2HalfAwayFromZero(t *testing.T) {
	assert.Equal(t, 33.33, round2(100*2.0/6.0))
	assert.Equal(t, 66.67, round2(100*2.0/3.0))
	assert.Equal(t, 12.5, round2(12.5))
	assert.Equal(t, 87.13, round2(87.125))
}
