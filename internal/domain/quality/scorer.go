// Package quality implements the dataset quality score: four independently
// capped sub-scores computed from summary counts via bucketed threshold
// ladders, summed and saturated at 100.
//
// The score is a derived scalar with no lifecycle of its own — it is
// recomputed from current query results on every run.  Threshold ladders are
// configuration, not constants: the defaults reproduce one recorded
// demonstration dataset and carry no statistical claim.
package quality

import (
	"fmt"

	"github.com/patlytics/patscope/pkg/errors"
)

// MaxScore is the saturation ceiling for the total score.
const MaxScore = 100

// Counts holds the four summary counts a score is computed from.
type Counts struct {
	// Applications is the number of applications in the dataset.
	Applications int64 `json:"applications"`

	// Citations is the total number of citation edges, forward plus backward.
	Citations int64 `json:"citations"`

	// Countries is the number of distinct primary-applicant countries.
	Countries int64 `json:"countries"`

	// Families is the number of distinct patent families.
	Families int64 `json:"families"`
}

// SubScore is the contribution of one dimension to the total.
type SubScore struct {
	Count  int64 `json:"count"`
	Points int   `json:"points"`
	Cap    int   `json:"cap"`
}

// QualityScore is the result of scoring a Counts value against a Thresholds
// configuration.
type QualityScore struct {
	Total        int      `json:"total"`
	Applications SubScore `json:"applications"`
	Citations    SubScore `json:"citations"`
	Countries    SubScore `json:"countries"`
	Families     SubScore `json:"families"`
}

// Score computes the quality score for counts under t.  It is a pure
// function: no side effects, deterministic for a given input.
//
// All-zero counts score 0 without error.  Negative counts are rejected —
// they cannot arise from row counting and indicate a caller bug.  An invalid
// Thresholds configuration is rejected before any arithmetic.
func Score(counts Counts, t Thresholds) (QualityScore, error) {
	if err := t.Validate(); err != nil {
		return QualityScore{}, err
	}
	if counts.Applications < 0 || counts.Citations < 0 || counts.Countries < 0 || counts.Families < 0 {
		return QualityScore{}, errors.New(errors.CodeScoreInvalidCounts,
			fmt.Sprintf("counts must be non-negative, got %+v", counts))
	}

	score := QualityScore{
		Applications: subScore(counts.Applications, t.Applications),
		Citations:    subScore(counts.Citations, t.Citations),
		Countries:    subScore(counts.Countries, t.Countries),
		Families:     subScore(counts.Families, t.Families),
	}

	total := score.Applications.Points +
		score.Citations.Points +
		score.Countries.Points +
		score.Families.Points
	if total > MaxScore {
		total = MaxScore
	}
	score.Total = total
	return score, nil
}

func subScore(count int64, l Ladder) SubScore {
	return SubScore{
		Count:  count,
		Points: l.Points(count),
		Cap:    l.Cap,
	}
}
