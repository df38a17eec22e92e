package service

import (
	"math"
	"sort"

	"github.com/campuskit/attendance-report-api/internal/models"
)

// studentAccumulator tracks raw counts for a single student plus the
// per-subject breakdown keyed by subject id.
type studentAccumulator struct {
	studentID   string
	studentName string
	rollNumber  string
	courseID    string
	courseName  string
	total       int
	present     int
	absent      int
	subjects    map[string]*subjectDetailAccumulator
}

type subjectDetailAccumulator struct {
	subjectID   string
	subjectName string
	total       int
	present     int
	absent      int
}

// groupAccumulator backs both subject and course aggregates: raw counts
// plus the distinct set of students seen.
type groupAccumulator struct {
	id       string
	name     string
	total    int
	present  int
	absent   int
	students map[string]struct{}
}

func (g *groupAccumulator) add(studentID string, present bool) {
	g.total++
	if present {
		g.present++
	} else {
		g.absent++
	}
	g.students[studentID] = struct{}{}
}

// aggregationResult holds the three keyed maps built by a single pass
// over the filtered event set. The maps live only for the duration of
// one report computation.
type aggregationResult struct {
	students map[string]*studentAccumulator
	subjects map[string]*groupAccumulator
	courses  map[string]*groupAccumulator
	skipped  int
}

// aggregateAttendance consumes the event sequence exactly once. Events
// whose student or subject reference did not resolve are dropped from
// every aggregate; the skip count is reported for data-quality logging.
func aggregateAttendance(events []models.AttendanceEvent) *aggregationResult {
	res := &aggregationResult{
		students: make(map[string]*studentAccumulator),
		subjects: make(map[string]*groupAccumulator),
		courses:  make(map[string]*groupAccumulator),
	}

	for _, ev := range events {
		if ev.StudentID == nil || ev.SubjectID == nil {
			res.skipped++
			continue
		}
		studentID := *ev.StudentID
		subjectID := *ev.SubjectID

		student, ok := res.students[studentID]
		if !ok {
			student = &studentAccumulator{
				studentID:   studentID,
				studentName: deref(ev.StudentName),
				rollNumber:  deref(ev.RollNumber),
				subjects:    make(map[string]*subjectDetailAccumulator),
			}
			res.students[studentID] = student
		}
		if student.courseID == "" && ev.CourseID != nil {
			student.courseID = *ev.CourseID
			student.courseName = deref(ev.CourseName)
		}
		student.total++
		if ev.Present {
			student.present++
		} else {
			student.absent++
		}

		detail, ok := student.subjects[subjectID]
		if !ok {
			detail = &subjectDetailAccumulator{
				subjectID:   subjectID,
				subjectName: deref(ev.SubjectName),
			}
			student.subjects[subjectID] = detail
		}
		detail.total++
		if ev.Present {
			detail.present++
		} else {
			detail.absent++
		}

		subject, ok := res.subjects[subjectID]
		if !ok {
			subject = &groupAccumulator{
				id:       subjectID,
				name:     deref(ev.SubjectName),
				students: make(map[string]struct{}),
			}
			res.subjects[subjectID] = subject
		}
		subject.add(studentID, ev.Present)

		if ev.CourseID != nil {
			courseID := *ev.CourseID
			course, ok := res.courses[courseID]
			if !ok {
				course = &groupAccumulator{
					id:       courseID,
					name:     deref(ev.CourseName),
					students: make(map[string]struct{}),
				}
				res.courses[courseID] = course
			}
			course.add(studentID, ev.Present)
		}
	}

	return res
}

// percentage converts raw counts into a bounded two-decimal percentage.
// A zero denominator yields exactly 0, never NaN.
func percentage(present, absent int) float64 {
	total := present + absent
	if total == 0 {
		return 0
	}
	return round2(100 * float64(present) / float64(total))
}

// round2 rounds half away from zero at two decimal places.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// assembleReport flattens the aggregate maps into deterministically
// ordered slices, derives percentages on every leaf, and packages the
// raw event list with the catalog filter options. Empty inputs produce
// empty slices, never nil.
func assembleReport(res *aggregationResult, events []models.AttendanceEvent, courses []models.CourseRef, subjects []models.SubjectRef) *models.AttendanceReport {
	report := &models.AttendanceReport{
		Attendance:   make([]models.AttendanceEvent, 0, len(events)),
		StudentStats: make([]models.StudentAggregate, 0, len(res.students)),
		SubjectStats: make([]models.SubjectAggregate, 0, len(res.subjects)),
		CourseStats:  make([]models.CourseAggregate, 0, len(res.courses)),
		Filters: models.ReportFilterOptions{
			Courses:  make([]models.CourseRef, 0, len(courses)),
			Subjects: make([]models.SubjectRef, 0, len(subjects)),
		},
	}
	report.Attendance = append(report.Attendance, events...)
	report.Filters.Courses = append(report.Filters.Courses, courses...)
	report.Filters.Subjects = append(report.Filters.Subjects, subjects...)

	for _, acc := range res.students {
		agg := models.StudentAggregate{
			StudentID:            acc.studentID,
			StudentName:          acc.studentName,
			RollNumber:           acc.rollNumber,
			CourseID:             acc.courseID,
			CourseName:           acc.courseName,
			TotalClasses:         acc.total,
			PresentClasses:       acc.present,
			AbsentClasses:        acc.absent,
			AttendancePercentage: percentage(acc.present, acc.absent),
			Subjects:             make([]models.SubjectDetail, 0, len(acc.subjects)),
		}
		for _, detail := range acc.subjects {
			agg.Subjects = append(agg.Subjects, models.SubjectDetail{
				SubjectID:            detail.subjectID,
				SubjectName:          detail.subjectName,
				TotalClasses:         detail.total,
				PresentClasses:       detail.present,
				AbsentClasses:        detail.absent,
				AttendancePercentage: percentage(detail.present, detail.absent),
			})
		}
		sort.Slice(agg.Subjects, func(i, j int) bool { return agg.Subjects[i].SubjectID < agg.Subjects[j].SubjectID })
		report.StudentStats = append(report.StudentStats, agg)
	}
	sort.Slice(report.StudentStats, func(i, j int) bool { return report.StudentStats[i].StudentID < report.StudentStats[j].StudentID })

	for _, acc := range res.subjects {
		report.SubjectStats = append(report.SubjectStats, models.SubjectAggregate{
			SubjectID:            acc.id,
			SubjectName:          acc.name,
			TotalClasses:         acc.total,
			DistinctStudentCount: len(acc.students),
			PresentCount:         acc.present,
			AbsentCount:          acc.absent,
			AttendancePercentage: percentage(acc.present, acc.absent),
		})
	}
	sort.Slice(report.SubjectStats, func(i, j int) bool { return report.SubjectStats[i].SubjectID < report.SubjectStats[j].SubjectID })

	for _, acc := range res.courses {
		report.CourseStats = append(report.CourseStats, models.CourseAggregate{
			CourseID:             acc.id,
			CourseName:           acc.name,
			TotalClasses:         acc.total,
			DistinctStudentCount: len(acc.students),
			PresentCount:         acc.present,
			AbsentCount:          acc.absent,
			AttendancePercentage: percentage(acc.present, acc.absent),
		})
	}
	sort.Slice(report.CourseStats, func(i, j int) bool { return report.CourseStats[i].CourseID < report.CourseStats[j].CourseID })

	return report
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
