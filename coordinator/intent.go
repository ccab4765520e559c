package coordinator

import (
	"regexp"
	"strings"
)

// Intent is the coarse classification of a user request.
type Intent string

const (
	IntentNutrition Intent = "nutrition"
	IntentFitness   Intent = "fitness"
	IntentCombined  Intent = "combined"
	IntentProfile   Intent = "profile"
)

// profilePatterns route identity/stats questions away from the agents.
var profilePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\bwho\s*am\s*i\b`),
	regexp.MustCompile(`\bwhoami\b`),
	regexp.MustCompile(`\bmy\s+profile\b`),
	regexp.MustCompile(`\bshow\s+(me\s+)?(my\s+)?profile\b`),
	regexp.MustCompile(`\bwhat('?s| is)\s+my\s+(name|age|height|weight|goal|diet|conditions|activity|preferences)\b`),
	regexp.MustCompile(`\b(daily\s+)?calorie\s+target\b`),
	regexp.MustCompile(`\btarget\s+calories\b`),
	regexp.MustCompile(`\bdaily\s+target\b`),
	regexp.MustCompile(`我的(资料|档案|信息|目标)`),
	regexp.MustCompile(`(每日|今日)(热量|卡路里)(目标|预算)`),
}

var fitnessKeywords = []string{
	// exercise and workout
	"exercise", "workout", "work out", "gym", "fitness", "training",
	"stretch", "yoga", "cardio", "hiit", "plank", "squat", "pushup",
	"push-up", "pull-up", "deadlift",
	// activity tracking
	"walk", "run", "jog", "swim", "bike", "cycling", "steps",
	"activity", "active",
	// goals
	"goal", "progress", "track", "lose weight", "gain muscle",
	"weight loss", "weight gain",
	// recommendations
	"suggest exercise", "recommend exercise", "what exercise",
	"what workout", "how to burn",
	// completion tracking
	"completed", "finished", "done with",
	// Chinese
	"运动", "健身", "锻炼", "跑步", "游泳", "骑车", "瑜伽", "举重",
	"走路", "散步", "爬山", "打球",
	"减肥", "增肌", "瘦身", "塑形", "减重", "增重",
}

var nutritionKeywords = []string{
	// food and eating
	"food", "eat", "ate", "eating", "eaten",
	"calorie", "calories", "kcal",
	"meal", "meals", "dish",
	"nutrition", "nutrient", "diet",
	// meals of the day
	"lunch", "dinner", "breakfast", "brunch", "snack", "supper",
	// composition
	"recipe", "ingredient", "cook", "cooking",
	"protein", "carb", "fiber", "sugar", "sodium",
	"macro", "intake", "portion",
	// Chinese
	"吃", "食物", "饭", "餐", "菜", "肉", "蔬菜", "水果",
	"热量", "卡路里", "营养", "膳食", "饮食",
	"早餐", "午餐", "晚餐", "宵夜", "点心",
	"炸鸡", "汉堡", "披萨", "面条", "米饭", "饺子",
}

// atePatterns detect the "I just ate X" opener that chains nutrition into a
// fitness follow-up.
var atePatterns = []string{"ate", "just ate", "i ate", "刚吃", "吃了", "吃完"}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

// ClassifyIntent classifies a message by keyword/regex matching. hasImage
// biases toward nutrition since photos are meal photos in this product.
func ClassifyIntent(text string, hasImage bool) Intent {
	lower := strings.ToLower(text)
	for _, pattern := range profilePatterns {
		if pattern.MatchString(lower) {
			return IntentProfile
		}
	}
	hasFitness := containsAny(lower, fitnessKeywords)
	hasNutrition := containsAny(lower, nutritionKeywords) || hasImage
	switch {
	case hasNutrition && hasFitness:
		return IntentCombined
	case hasNutrition && containsAny(lower, atePatterns):
		return IntentCombined
	case hasFitness:
		return IntentFitness
	case hasNutrition:
		return IntentNutrition
	}
	// ambiguous requests default to nutrition
	return IntentNutrition
}
