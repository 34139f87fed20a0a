// internal/catalog/universities.go
package catalog

import (
	"sort"
	"strings"

	"offr-workers/internal/models"
)

// universityNames maps catalogue ids to display names.
var universityNames = map[string]string{
	"KCL":  "King's College London",
	"UCL":  "University College London",
	"LSE":  "London School of Economics",
	"OXF":  "University of Oxford",
	"CAM":  "University of Cambridge",
	"IMP":  "Imperial College London",
	"WAR":  "University of Warwick",
	"STA":  "University of St Andrews",
	"BATH": "University of Bath",
	"MAN":  "University of Manchester",
	"EDIN": "University of Edinburgh",
	"BRIS": "University of Bristol",
	"DUR":  "Durham University",
	"EXE":  "University of Exeter",
}

// UniversityName resolves an id to its display name, falling back to the
// id itself for institutions not yet in the map.
func UniversityName(id string) string {
	if name, ok := universityNames[strings.ToUpper(id)]; ok {
		return name
	}
	return id
}

// Universities lists all known institutions sorted by id.
func Universities() []models.University {
	out := make([]models.University, 0, len(universityNames))
	for id, name := range universityNames {
		out = append(out, models.University{ID: id, Name: name})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// UniversityIDFromCourseID derives the institution id from a course id.
// Course ids follow "UNI_course-slug"; rows predating that convention use
// the first six characters.
func UniversityIDFromCourseID(courseID string) string {
	if idx := strings.Index(courseID, "_"); idx > 0 {
		return courseID[:idx]
	}
	if len(courseID) > 6 {
		return courseID[:6]
	}
	return courseID
}
