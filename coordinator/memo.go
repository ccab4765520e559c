package coordinator

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/healthbutler/healthbutler/agents/nutrition"
	"github.com/healthbutler/healthbutler/safety"
)

// HealthMemo is the structured digest of a just-completed nutrition analysis,
// carried forward to the fitness recommendation of the same request. It has
// no persistence; its lifetime is the single cross-agent call.
type HealthMemo struct {
	DishName      string              `json:"dish_name"`
	CalorieIntake float64             `json:"calorie_intake"`
	Warnings      []safety.WarningTag `json:"visual_warnings"`
	HealthScore   int                 `json:"health_score"`
}

// MemoFromResult derives a memo from a nutrition result. It returns nil when
// the meal carries no warnings and a good score, and nil on missing fields;
// callers treat a nil memo as "pass the task through unmodified".
func MemoFromResult(res *nutrition.Result) *HealthMemo {
	if res == nil {
		return nil
	}
	if len(res.VisualWarnings) == 0 && res.HealthScore >= 7 {
		return nil
	}
	dish := strings.TrimSpace(res.DishName)
	if dish == "" {
		dish = "meal"
	}
	return &HealthMemo{
		DishName:      dish,
		CalorieIntake: res.Calories.Amount,
		Warnings:      res.VisualWarnings,
		HealthScore:   res.HealthScore,
	}
}

// Header renders the memo as the task-string preamble, language-matched.
func (m *HealthMemo) Header(lang Language) string {
	tags := strings.Join(safety.TagStrings(m.Warnings), ", ")
	if lang == Chinese {
		return fmt.Sprintf("[健康备忘录] 刚刚摄入: %s, 热量: %.0f, 风险标签: [%s], 健康评分: %d/10",
			m.DishName, m.CalorieIntake, tags, m.HealthScore)
	}
	return fmt.Sprintf("[Health Memo] consumed: %s, calories: %.0f, warnings: [%s], score: %d/10",
		m.DishName, m.CalorieIntake, tags, m.HealthScore)
}

// Inject prepends the memo preamble to a task. Tasks without warnings pass
// through untouched.
func (m *HealthMemo) Inject(task string, lang Language) string {
	if m == nil || len(m.Warnings) == 0 {
		return task
	}
	return m.Header(lang) + "\n" + task
}

var (
	memoHeaderPattern = regexp.MustCompile(`\[(?:Health Memo|健康备忘录)[^\]]*\]`)
	memoDishPattern   = regexp.MustCompile(`(?:consumed|刚刚摄入)\s*[:：]\s*([^,，\n]+)`)
	memoKcalPattern   = regexp.MustCompile(`(?:calories|热量)\s*[:：]\s*~?([0-9]+(?:\.[0-9]+)?)`)
	memoScorePattern  = regexp.MustCompile(`(?:score|健康评分)\s*[:：]\s*([0-9]+)\s*/\s*10`)
)

// ExtractMemo parses a memo preamble back out of a task string. A missing or
// malformed preamble yields nil, never an error.
func ExtractMemo(text string) *HealthMemo {
	if !memoHeaderPattern.MatchString(text) {
		return nil
	}
	memo := &HealthMemo{
		DishName:    "meal",
		HealthScore: 10,
		Warnings:    safety.ExtractTags(text),
	}
	if match := memoDishPattern.FindStringSubmatch(text); match != nil {
		memo.DishName = strings.TrimSpace(match[1])
	}
	if match := memoKcalPattern.FindStringSubmatch(text); match != nil {
		memo.CalorieIntake, _ = strconv.ParseFloat(match[1], 64)
	}
	if match := memoScorePattern.FindStringSubmatch(text); match != nil {
		memo.HealthScore, _ = strconv.Atoi(match[1])
	}
	if len(memo.Warnings) == 0 && memo.HealthScore >= 7 {
		return nil
	}
	return memo
}
