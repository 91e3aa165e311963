package extractor

import (
	"regexp"
	"strings"

	"guidechat/internal/model"
	"guidechat/internal/utils"
)

var firstNumber = regexp.MustCompile(num)

// Area returns the first number in the message as square metres, or 0.
func Area(message string) float64 {
	m := firstNumber.FindStringSubmatch(message)
	if m == nil {
		return 0
	}
	return parseNum(m[1])
}

// PropertyType classifies the wanted rental. Rooms are the default.
func PropertyType(message string) model.PropertyType {
	text := utils.Normalize(message)
	switch {
	case strings.Contains(text, "trọ"), strings.Contains(text, "phòng"):
		return model.PropertyRoom
	case strings.Contains(text, "căn hộ"), strings.Contains(text, "chung cư"), strings.Contains(text, "apartment"):
		return model.PropertyApartment
	}
	return model.PropertyRoom
}

const universityName = `(công nghiệp|bách khoa|kinh tế|sư phạm|y dược|nông lâm|xây dựng|[^,.\s]+(?:\s+[^,.\s]+)*)`

var (
	universityFull   = regexp.MustCompile(`(?:đh|đại học)\s+` + universityName)
	universitySchool = regexp.MustCompile(`trường\s+(?:đại học\s+)?` + universityName)
	universityAbbrev = regexp.MustCompile(`\b(uit|hcmut|hust|neu|fpt|rmit|tdt|tdtu|hutech)\b`)
)

// University names the user's school. Unrecognized input is returned as typed.
func University(message string) string {
	text := utils.Normalize(message)
	for _, re := range []*regexp.Regexp{universityFull, universitySchool} {
		if m := re.FindStringSubmatch(text); m != nil {
			return "Đại học " + utils.TitleVi(m[1])
		}
	}
	if m := universityAbbrev.FindStringSubmatch(text); m != nil {
		return strings.ToUpper(m[1])
	}
	return strings.TrimSpace(message)
}
