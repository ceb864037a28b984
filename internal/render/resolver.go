package render

import (
	"fmt"
	"strconv"

	"github.com/jtech-innovations/report-card-api/internal/models"
)

const dateLayout = "02 Jan 2006"

// Resolve maps a data-field key to its display string for one student.
// The function is pure; everything it prints comes from ctx. Unknown
// keys echo back wrapped in braces so a misconfigured template shows
// the key on the page instead of silently dropping it.
func Resolve(key string, ctx *models.RenderContext) string {
	switch key {
	case "student.name":
		return ctx.Student.FullName()
	case "student.first_name":
		return ctx.Student.FirstName
	case "student.last_name":
		return ctx.Student.LastName
	case "student.admission_no":
		return ctx.Student.AdmissionNo
	case "student.gender":
		return ctx.Student.Gender
	case "student.date_of_birth":
		if ctx.Student.DateOfBirth == nil {
			return noScore
		}
		return ctx.Student.DateOfBirth.Format(dateLayout)
	case "student.guardian":
		return ctx.Student.GuardianName

	case "class.name":
		return ctx.ClassName
	case "class.teacher":
		return ctx.TeacherName
	case "class.size":
		if ctx.ClassSize <= 0 {
			return noScore
		}
		return strconv.Itoa(ctx.ClassSize)

	case "attendance.present":
		return strconv.Itoa(ctx.Attendance.Present)
	case "attendance.absent":
		return strconv.Itoa(ctx.Attendance.Absent)
	case "attendance.late":
		return strconv.Itoa(ctx.Attendance.Late)
	case "attendance.excused":
		return strconv.Itoa(ctx.Attendance.Excused)
	case "attendance.school_days":
		return strconv.Itoa(ctx.Attendance.SchoolDays)
	case "attendance.percent":
		return fmt.Sprintf("%.1f%%", ctx.Attendance.Percent)

	case "term":
		return ctx.Term
	case "academic_year":
		return ctx.AcademicYear
	case "next_term_date":
		return ctx.NextTermDate
	case "position":
		if ctx.Position == nil {
			return noScore
		}
		return fmt.Sprintf("%d of %d", ctx.Position.Rank, ctx.Position.OutOf)
	case "comment.teacher":
		return ctx.TeacherComment
	case "comment.principal":
		return ctx.PrincipalComment
	}
	return "{{" + key + "}}"
}
