package models

// Semester identifies the academic term an enrollment belongs to.
type Semester string

// Recognised semesters.
const (
	SemesterFall   Semester = "FALL"
	SemesterWinter Semester = "WINTER"
	SemesterSummer Semester = "SUMMER"
)

// Valid reports whether s is one of the recognised semesters.
func (s Semester) Valid() bool {
	switch s {
	case SemesterFall, SemesterWinter, SemesterSummer:
		return true
	}
	return false
}

// Enrollment is the persisted enrollment record. EnrollmentID is the
// public identity, generated once at creation and preserved across
// updates. ID is the internal storage key and never leaves the
// repository layer. Student and course fields are denormalized
// snapshots taken from the upstream services at enrollment time.
type Enrollment struct {
	ID               int64    `db:"id" json:"-"`
	EnrollmentID     string   `db:"enrollment_id" json:"enrollmentId"`
	EnrollmentYear   int      `db:"enrollment_year" json:"enrollmentYear"`
	Semester         Semester `db:"semester" json:"semester"`
	StudentID        string   `db:"student_id" json:"studentId"`
	StudentFirstName string   `db:"student_first_name" json:"studentFirstName"`
	StudentLastName  string   `db:"student_last_name" json:"studentLastName"`
	CourseID         string   `db:"course_id" json:"courseId"`
	CourseNumber     string   `db:"course_number" json:"courseNumber"`
	CourseName       string   `db:"course_name" json:"courseName"`
}
