package extractor

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"guidechat/internal/model"
	"guidechat/internal/utils"
)

const (
	million = 1_000_000
	num     = `(\d+(?:[.,]\d+)?)`
	unit    = `(?:triệu|tr)`
)

// "2.500.000" and "2,500,000" are collapsed to plain digits first.
var thousandsGroups = regexp.MustCompile(`\d{1,3}(?:[.,]\d{3})+\b`)

type budgetRule struct {
	re    *regexp.Regexp
	build func(m []string) *model.Budget
}

// Rules are tried in order; the first one that matches and builds a budget wins.
var budgetRules = []budgetRule{
	{
		re: regexp.MustCompile(`từ\s*` + num + `\s*` + unit + `?\s*(?:đến|tới|-)\s*` + num + `\s*` + unit),
		build: func(m []string) *model.Budget {
			return rangeBudget(parseNum(m[1])*million, parseNum(m[2])*million)
		},
	},
	{
		re: regexp.MustCompile(`từ\s*` + num + `\s*(?:đến|tới|-)\s*` + num + `\s*(?:đồng|vnd|vnđ)?`),
		build: func(m []string) *model.Budget {
			return rangeBudget(parseNum(m[1]), parseNum(m[2]))
		},
	},
	{
		// "3 triệu 500" is 3.5 million
		re: regexp.MustCompile(`(\d+)\s*` + unit + `\s*(\d+)`),
		build: func(m []string) *model.Budget {
			return maxBudget((parseNum(m[1]) + parseNum(m[2])/1000) * million)
		},
	},
	{
		re: regexp.MustCompile(`dưới\s*` + num + `\s*` + unit),
		build: func(m []string) *model.Budget {
			return maxBudget(parseNum(m[1]) * million)
		},
	},
	{
		re: regexp.MustCompile(`trên\s*` + num + `\s*` + unit),
		build: func(m []string) *model.Budget {
			return &model.Budget{Min: model.Float(round(parseNum(m[1]) * million))}
		},
	},
	{
		re: regexp.MustCompile(num + `\s*` + unit),
		build: func(m []string) *model.Budget {
			return maxBudget(parseNum(m[1]) * million)
		},
	},
	{
		re: regexp.MustCompile(`\b(\d{6,})\b`),
		build: func(m []string) *model.Budget {
			v := parseNum(m[1])
			if v < 100_000 {
				return nil
			}
			return maxBudget(v)
		},
	},
	{
		re: regexp.MustCompile(num),
		build: func(m []string) *model.Budget {
			v := parseNum(m[1])
			if v < 100 {
				return maxBudget(v * million)
			}
			return maxBudget(v)
		},
	},
}

// Budget extracts a monthly price range in VND. It returns an empty budget
// when no rule applies.
func Budget(message string) model.Budget {
	text := utils.Normalize(message)
	text = thousandsGroups.ReplaceAllStringFunc(text, func(s string) string {
		return strings.NewReplacer(".", "", ",", "").Replace(s)
	})

	for _, rule := range budgetRules {
		m := rule.re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		if b := rule.build(m); b != nil {
			return *b
		}
	}
	return model.Budget{}
}

// rangeBudget returns nil for an inverted range so later rules get a turn.
func rangeBudget(lo, hi float64) *model.Budget {
	if lo > hi {
		return nil
	}
	return &model.Budget{Min: model.Float(round(lo)), Max: model.Float(round(hi))}
}

func maxBudget(v float64) *model.Budget {
	return &model.Budget{Max: model.Float(round(v))}
}

func parseNum(s string) float64 {
	v, err := strconv.ParseFloat(strings.Replace(s, ",", ".", 1), 64)
	if err != nil {
		return 0
	}
	return v
}

func round(v float64) float64 {
	return math.Round(v)
}
