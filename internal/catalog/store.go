// internal/catalog/store.go
package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"sort"
	"time"

	"offr-workers/internal/common/errors"
	"offr-workers/internal/common/logger"
	"offr-workers/internal/models"
	"offr-workers/internal/offers/parser"

	"github.com/redis/go-redis/v9"
)

const (
	minValidIBPoints = 24
	maxValidIBPoints = 45

	maxAlternatives = 3
)

// Store reads the course catalogue from Postgres with a Redis
// cache in front. Cached entries expire on TTL; there is no
// invalidation because catalogue rows change out of band.
type Store struct {
	db       *sql.DB
	redis    *redis.Client
	cacheTTL time.Duration
	logger   logger.Logger
}

func NewStore(db *sql.DB, rdb *redis.Client, cacheTTL time.Duration, log logger.Logger) *Store {
	return &Store{
		db:       db,
		redis:    rdb,
		cacheTTL: cacheTTL,
		logger:   log.WithFields(map[string]interface{}{"component": "catalog"}),
	}
}

// GetCourse fetches one course row by id, cache first.
func (s *Store) GetCourse(ctx context.Context, courseID string) (*models.Course, error) {
	cacheKey := "course:" + courseID
	if s.redis != nil {
		if val, err := s.redis.Get(ctx, cacheKey).Result(); err == nil {
			var course models.Course
			if err := json.Unmarshal([]byte(val), &course); err == nil {
				return &course, nil
			}
		}
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT id, university_id, name, faculty,
		       min_points_home, intl_buffer, typical_offer,
		       min_requirements, required_subjects, ps_expected_signals, tuition_intl
		FROM courses WHERE id = $1`, courseID)

	var course models.Course
	var minPoints, intlBuffer, tuition sql.NullInt64
	var typicalOffer, minRequirements, requiredSubjects, psSignals sql.NullString
	err := row.Scan(&course.ID, &course.UniversityID, &course.Name, &course.Faculty,
		&minPoints, &intlBuffer, &typicalOffer,
		&minRequirements, &requiredSubjects, &psSignals, &tuition)
	if err == sql.ErrNoRows {
		return nil, errors.NewCourseNotFoundError(courseID)
	}
	if err != nil {
		return nil, errors.NewQueryExecutionFailedError("get_course", err)
	}

	course.MinPointsHome = int(minPoints.Int64)
	course.IntlBuffer = int(intlBuffer.Int64)
	course.TypicalOffer = CleanStr(typicalOffer.String)
	course.MinRequirements = CleanStr(minRequirements.String)
	course.RequiredSubjects = CleanStr(requiredSubjects.String)
	course.PSExpectedSignals = CleanStr(psSignals.String)
	course.TuitionIntl = int(tuition.Int64)

	if course.UniversityID == "" {
		course.UniversityID = UniversityIDFromCourseID(course.ID)
	}
	course.UniversityName = UniversityName(course.UniversityID)

	if s.redis != nil {
		data, _ := json.Marshal(course)
		if err := s.redis.Set(ctx, cacheKey, data, s.cacheTTL).Err(); err != nil {
			s.logger.Warn("course cache write failed", map[string]interface{}{
				"courseId": courseID,
				"error":    err,
			})
		}
	}

	return &course, nil
}

// Thresholds derives the admission thresholds a course implies. The
// structured min_points_home column wins when it holds a plausible IB
// total; otherwise the free-text requirement fields are parsed, most
// authoritative column first.
func Thresholds(course *models.Course) models.CourseThresholds {
	t := models.CourseThresholds{
		IntlBuffer:       course.IntlBuffer,
		RequiredSubjects: course.RequiredSubjects,
	}

	if course.MinPointsHome >= minValidIBPoints && course.MinPointsHome <= maxValidIBPoints {
		t.MinPoints = course.MinPointsHome
	} else if pts, ok := parser.ExtractMinimumPointsFrom(course.MinRequirements, course.TypicalOffer); ok {
		t.MinPoints = pts
	}

	if offer, ok := parser.ExtractTypicalOfferFrom(course.TypicalOffer, course.MinRequirements); ok {
		t.TypicalOffer = offer
	}

	return t
}

// Alternative is a sibling course suggestion.
type Alternative struct {
	CourseID   string `json:"course_id"`
	CourseName string `json:"course_name"`
	University string `json:"university"`
	IBMin      int    `json:"ib_min"`
}

// SuggestAlternatives lists up to three courses in the same faculty with
// an IB threshold at or below targetMin. Courses whose threshold cannot
// be determined are skipped. Easiest thresholds first, name breaks ties.
func (s *Store) SuggestAlternatives(ctx context.Context, course *models.Course, targetMin int) ([]Alternative, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, university_id, name,
		       min_points_home, intl_buffer, typical_offer,
		       min_requirements, required_subjects
		FROM courses WHERE faculty = $1 AND id <> $2`, course.Faculty, course.ID)
	if err != nil {
		return nil, errors.NewQueryExecutionFailedError("suggest_alternatives", err)
	}
	defer rows.Close()

	var alternatives []Alternative
	for rows.Next() {
		var c models.Course
		var minPoints, intlBuffer sql.NullInt64
		var typicalOffer, minRequirements, requiredSubjects sql.NullString
		if err := rows.Scan(&c.ID, &c.UniversityID, &c.Name,
			&minPoints, &intlBuffer, &typicalOffer,
			&minRequirements, &requiredSubjects); err != nil {
			return nil, errors.NewQueryExecutionFailedError("suggest_alternatives", err)
		}
		c.MinPointsHome = int(minPoints.Int64)
		c.IntlBuffer = int(intlBuffer.Int64)
		c.TypicalOffer = CleanStr(typicalOffer.String)
		c.MinRequirements = CleanStr(minRequirements.String)
		c.RequiredSubjects = CleanStr(requiredSubjects.String)
		if c.UniversityID == "" {
			c.UniversityID = UniversityIDFromCourseID(c.ID)
		}

		thresholds := Thresholds(&c)
		if thresholds.MinPoints == 0 || thresholds.MinPoints > targetMin {
			continue
		}
		alternatives = append(alternatives, Alternative{
			CourseID:   c.ID,
			CourseName: c.Name,
			University: UniversityName(c.UniversityID),
			IBMin:      thresholds.MinPoints,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewQueryExecutionFailedError("suggest_alternatives", err)
	}

	sort.Slice(alternatives, func(i, j int) bool {
		if alternatives[i].IBMin != alternatives[j].IBMin {
			return alternatives[i].IBMin < alternatives[j].IBMin
		}
		return alternatives[i].CourseName < alternatives[j].CourseName
	})
	if len(alternatives) > maxAlternatives {
		alternatives = alternatives[:maxAlternatives]
	}
	return alternatives, nil
}
