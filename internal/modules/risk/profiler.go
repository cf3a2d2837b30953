// Package risk scores the risk-assessment questionnaire.
package risk

import (
	"math"

	"github.com/aristath/portfolio-advisor/internal/domain"
)

// Question IDs with a special meaning beyond their score.
const (
	questionHorizon    = 3
	questionExperience = 4
)

const (
	defaultHorizon    = "medium"
	defaultExperience = "none"
)

// Option is one selectable answer with its score contribution
type Option struct {
	Value       string `json:"value"`
	Label       string `json:"label"`
	ScoreWeight int    `json:"score_weight"`
}

// Question is a single-choice questionnaire item
type Question struct {
	Question string   `json:"question"`
	Type     string   `json:"type"`
	Options  []Option `json:"options"`
	ID       int      `json:"id"`
}

// Answer selects one option value for a question
type Answer struct {
	Value      string `json:"value"`
	QuestionID int    `json:"question_id"`
}

// Profile is the scored result of a complete questionnaire
type Profile struct {
	RiskTolerance        domain.RiskTolerance `json:"risk_tolerance"`
	InvestmentHorizon    string               `json:"investment_horizon"`
	InvestmentExperience string               `json:"investment_experience"`
	RecommendedStrategy  domain.Strategy      `json:"recommended_strategy"`
	Description          string               `json:"description"`
	RiskScore            int                  `json:"risk_score"`
}

// Profiler scores answers against a fixed question set.
// It is read-only after construction and safe for concurrent use.
type Profiler struct {
	weights   map[int]map[string]int
	questions []Question
	maxTotal  int
}

// NewProfiler builds the scoring tables for the standard questionnaire
func NewProfiler() *Profiler {
	questions := standardQuestions()
	p := &Profiler{
		questions: questions,
		weights:   make(map[int]map[string]int, len(questions)),
	}
	for _, q := range questions {
		byValue := make(map[string]int, len(q.Options))
		best := 0
		for _, o := range q.Options {
			byValue[o.Value] = o.ScoreWeight
			if o.ScoreWeight > best {
				best = o.ScoreWeight
			}
		}
		p.weights[q.ID] = byValue
		p.maxTotal += best
	}
	return p
}

// QuestionCount returns the number of questions an assessment must answer
func (p *Profiler) QuestionCount() int {
	return len(p.questions)
}

// Questions returns a copy of the questionnaire
func (p *Profiler) Questions() []Question {
	out := make([]Question, len(p.questions))
	for i, q := range p.questions {
		q.Options = append([]Option(nil), q.Options...)
		out[i] = q
	}
	return out
}

// Calculate scores answers into a profile. Unknown question IDs and option
// values contribute nothing.
func (p *Profiler) Calculate(answers []Answer) Profile {
	raw := 0
	horizon := defaultHorizon
	experience := defaultExperience

	for _, a := range answers {
		byValue, ok := p.weights[a.QuestionID]
		if !ok {
			continue
		}
		raw += byValue[a.Value]

		switch a.QuestionID {
		case questionHorizon:
			horizon = a.Value
		case questionExperience:
			experience = a.Value
		}
	}

	score := ScaleScore(raw, p.maxTotal)
	tolerance := ToleranceForScore(score)

	return Profile{
		RiskScore:            score,
		RiskTolerance:        tolerance,
		InvestmentHorizon:    horizon,
		InvestmentExperience: experience,
		RecommendedStrategy:  tolerance.RecommendedStrategy(),
		Description:          Describe(tolerance),
	}
}

// ScaleScore maps a raw score onto 1..10: round(raw/max * 9) + 1.
// Halves round to even.
func ScaleScore(raw, max int) int {
	normalized := 0.0
	if max > 0 {
		normalized = float64(raw) / float64(max)
	}
	score := int(math.RoundToEven(normalized*9)) + 1
	if score < 1 {
		return 1
	}
	if score > 10 {
		return 10
	}
	return score
}

// ToleranceForScore buckets a 1..10 score
func ToleranceForScore(score int) domain.RiskTolerance {
	switch {
	case score <= 3:
		return domain.RiskToleranceConservative
	case score <= 7:
		return domain.RiskToleranceModerate
	default:
		return domain.RiskToleranceAggressive
	}
}

var toleranceDescriptions = map[domain.RiskTolerance]string{
	domain.RiskToleranceConservative: "あなたのリスク許容度は「安定重視型」です。元本の安全性を重視し、債券を中心とした安定的なポートフォリオをおすすめします。",
	domain.RiskToleranceModerate:     "あなたのリスク許容度は「バランス型」です。長期投資を前提に、株式と債券をバランスよく組み合わせたポートフォリオをおすすめします。",
	domain.RiskToleranceAggressive:   "あなたのリスク許容度は「積極型」です。高いリターンを目指し、株式を中心としたポートフォリオをおすすめします。リスクも相応に高くなります。",
}

// Describe returns the user-facing explanation of a tolerance
func Describe(t domain.RiskTolerance) string {
	return toleranceDescriptions[t]
}
