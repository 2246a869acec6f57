package evaluation

import "strconv"

// logHeader is the fixed column set of the evaluation log, in order.
var logHeader = []string{
	"question",
	"generated_answer",
	"rouge1",
	"rouge2",
	"rougeL",
	"meteor",
	"cosine_similarity",
	"accuracy",
	"relevance",
	"coherence",
	"clarity",
	"consistency",
	"sentiment_alignment",
}

// Record is the result of evaluating one generated answer.
type Record struct {
	Question        string
	GeneratedAnswer string

	Rouge1           float64
	Rouge2           float64
	RougeL           float64
	Meteor           float64
	CosineSimilarity float64

	// Rubric holds one entry per judged dimension. Values are validated
	// integer strings "1".."5", or "" when the judge failed.
	Rubric RubricScores
}

// Header returns the evaluation log column names in order.
func Header() []string {
	out := make([]string, len(logHeader))
	copy(out, logHeader)
	return out
}

// Row renders the record as one evaluation-log row, aligned with
// Header.
func (r *Record) Row() []string {
	row := []string{
		r.Question,
		r.GeneratedAnswer,
		formatScore(r.Rouge1),
		formatScore(r.Rouge2),
		formatScore(r.RougeL),
		formatScore(r.Meteor),
		formatScore(r.CosineSimilarity),
	}
	for _, dimension := range Dimensions {
		row = append(row, r.Rubric[dimension])
	}
	return row
}

// formatScore renders a float with the fewest digits that round-trip.
func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
