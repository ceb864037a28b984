package service

import (
	"context"
	"database/sql"
	"errors"
	"sort"

	"go.uber.org/zap"

	"github.com/jtech-innovations/report-card-api/internal/models"
	"github.com/jtech-innovations/report-card-api/internal/render"
	appErrors "github.com/jtech-innovations/report-card-api/pkg/errors"
)

type rosterStore interface {
	GetByID(ctx context.Context, id string) (*models.Student, error)
	ListByClass(ctx context.Context, classID string) ([]models.Student, error)
}

type classStore interface {
	GetByID(ctx context.Context, id string) (*models.Class, error)
}

type gradeStore interface {
	ListByClassTerm(ctx context.Context, classID, term string) ([]models.SubjectGrade, error)
}

type attendanceStore interface {
	ListByClassTerm(ctx context.Context, classID, term string) ([]models.AttendanceSummary, error)
}

type skillRatingStore interface {
	ListByClassTerm(ctx context.Context, classID, term string) (map[string]map[string]string, error)
}

type signatureStore interface {
	ListBySchool(ctx context.Context, schoolCode string) ([]models.Signature, error)
}

type commentStore interface {
	ListByClassTerm(ctx context.Context, classID, term string) (map[string]models.TermComment, error)
}

// ContextService assembles the per-student render contexts that feed
// composition: roster, grades, attendance, skills, signatures,
// comments and the class position ranking.
type ContextService struct {
	students   rosterStore
	classes    classStore
	grades     gradeStore
	attendance attendanceStore
	skills     skillRatingStore
	signatures signatureStore
	comments   commentStore
	logger     *zap.Logger
}

// NewContextService constructs the context service.
func NewContextService(students rosterStore, classes classStore, grades gradeStore, attendance attendanceStore, skills skillRatingStore, signatures signatureStore, comments commentStore, logger *zap.Logger) *ContextService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ContextService{
		students:   students,
		classes:    classes,
		grades:     grades,
		attendance: attendance,
		skills:     skills,
		signatures: signatures,
		comments:   comments,
		logger:     logger,
	}
}

// BuildForClass assembles one render context per student in roster
// order. The slice order is the order report cards render in.
func (s *ContextService) BuildForClass(ctx context.Context, tpl *models.ReportTemplate, classID, term string) ([]*models.RenderContext, error) {
	class, err := s.classes.GetByID(ctx, classID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class")
	}

	roster, err := s.students.ListByClass(ctx, classID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load roster")
	}

	gradeRows, err := s.grades.ListByClassTerm(ctx, classID, term)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load grades")
	}
	gradesByStudent := make(map[string]map[string]models.SubjectGrade)
	for _, g := range gradeRows {
		if gradesByStudent[g.StudentID] == nil {
			gradesByStudent[g.StudentID] = make(map[string]models.SubjectGrade)
		}
		gradesByStudent[g.StudentID][g.Subject] = g
	}

	attendanceRows, err := s.attendance.ListByClassTerm(ctx, classID, term)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance")
	}
	attendanceByStudent := make(map[string]models.AttendanceSummary, len(attendanceRows))
	for _, a := range attendanceRows {
		attendanceByStudent[a.StudentID] = a
	}

	skillsByStudent, err := s.skills.ListByClassTerm(ctx, classID, term)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load social skills")
	}

	commentsByStudent, err := s.comments.ListByClassTerm(ctx, classID, term)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load comments")
	}

	signatureMap := s.loadSignatures(ctx, tpl.SchoolCode)
	positions := rankByCoreAverage(tpl, roster, gradesByStudent)

	teacherName := ""
	if class.TeacherName != nil {
		teacherName = *class.TeacherName
	}

	contexts := make([]*models.RenderContext, 0, len(roster))
	for _, student := range roster {
		rc := &models.RenderContext{
			Student:      student,
			ClassName:    class.Name,
			TeacherName:  teacherName,
			Term:         term,
			AcademicYear: class.AcademicYear,
			ClassSize:    len(roster),
			Grades:       gradesByStudent[student.ID],
			SocialSkills: skillsByStudent[student.ID],
			Signatures:   signatureMap,
		}
		if rc.Grades == nil {
			rc.Grades = map[string]models.SubjectGrade{}
		}
		if rc.SocialSkills == nil {
			rc.SocialSkills = map[string]string{}
		}
		if summary, ok := attendanceByStudent[student.ID]; ok {
			rc.Attendance = summary
		}
		if pos, ok := positions[student.ID]; ok {
			rc.Position = pos
		}
		if comment, ok := commentsByStudent[student.ID]; ok {
			rc.TeacherComment = comment.TeacherComment
			rc.PrincipalComment = comment.PrincipalComment
		}
		contexts = append(contexts, rc)
	}
	return contexts, nil
}

// BuildForStudent assembles a single student's context, reusing the
// class build so position ranking stays consistent.
func (s *ContextService) BuildForStudent(ctx context.Context, tpl *models.ReportTemplate, studentID, term string) (*models.RenderContext, error) {
	student, err := s.students.GetByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	if student.ClassID == nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "student is not assigned to a class")
	}

	contexts, err := s.BuildForClass(ctx, tpl, *student.ClassID, term)
	if err != nil {
		return nil, err
	}
	for _, rc := range contexts {
		if rc.Student.ID == studentID {
			return rc, nil
		}
	}
	return nil, appErrors.Clone(appErrors.ErrNotFound, "student not in class roster")
}

// loadSignatures is best-effort: a report without signature images is
// still a valid report.
func (s *ContextService) loadSignatures(ctx context.Context, schoolCode string) map[models.SignatureRole]string {
	signatureMap := map[models.SignatureRole]string{}
	sigs, err := s.signatures.ListBySchool(ctx, schoolCode)
	if err != nil {
		s.logger.Warn("failed to load signatures", zap.String("school", schoolCode), zap.Error(err))
		return signatureMap
	}
	for _, sig := range sigs {
		signatureMap[sig.Role] = sig.ImagePath
	}
	return signatureMap
}

// rankByCoreAverage orders the class by core average, highest first.
// Students with equal averages share a rank; students without any core
// record get no position. OutOf is the full roster size, so a student
// placed 2nd in a class of 30 reads "2 of 30" even when some of the 30
// have no core grades yet.
func rankByCoreAverage(tpl *models.ReportTemplate, roster []models.Student, gradesByStudent map[string]map[string]models.SubjectGrade) map[string]*models.PositionInfo {
	type ranked struct {
		studentID string
		average   float64
	}
	var entries []ranked
	for _, student := range roster {
		avg := render.CoreAverage(tpl.Subjects, gradesByStudent[student.ID], tpl.UseWeightedGrading)
		if avg == nil {
			continue
		}
		entries = append(entries, ranked{studentID: student.ID, average: *avg})
	}
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].average > entries[j].average })

	positions := make(map[string]*models.PositionInfo, len(entries))
	rank := 0
	for i, entry := range entries {
		if i == 0 || entry.average < entries[i-1].average {
			rank = i + 1
		}
		positions[entry.studentID] = &models.PositionInfo{Rank: rank, OutOf: len(roster)}
	}
	return positions
}
