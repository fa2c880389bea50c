package analysis

import (
	"regexp"
	"slices"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DefaultTopN은 기본 상위 단어 수입니다.
const DefaultTopN = 10

var (
	// <@U123>, <#C123|general>, <https://...|label> 같은 Slack 마크업
	slackMarkupPattern = regexp.MustCompile(`<[^>]*>`)
	urlPattern         = regexp.MustCompile(`https?://\S+`)
)

// WordCount는 단어와 등장 횟수입니다.
type WordCount struct {
	Word  string
	Count int
}

// Analyzer는 질문 텍스트의 단어 빈도를 계산합니다.
// 생성 후 변경되지 않으므로 동시 사용에 안전합니다.
type Analyzer struct {
	excluded map[string]struct{}
}

// NewAnalyzer는 영어 불용어와 extra를 제외하는 Analyzer를 생성합니다.
func NewAnalyzer(extra []string) *Analyzer {
	excluded := make(map[string]struct{}, len(englishStopWords)+len(extra))
	for _, word := range englishStopWords {
		excluded[word] = struct{}{}
	}
	for _, word := range extra {
		word = strings.ToLower(strings.TrimSpace(word))
		if word != "" {
			excluded[word] = struct{}{}
		}
	}
	return &Analyzer{excluded: excluded}
}

// Tokenize는 텍스트를 소문자 단어로 나누고 제외 단어와 한 글자 단어를 걸러냅니다.
func (a *Analyzer) Tokenize(text string) []string {
	return a.tokenize(cases.Lower(language.Und), text)
}

func (a *Analyzer) tokenize(lower cases.Caser, text string) []string {
	text = slackMarkupPattern.ReplaceAllString(text, " ")
	text = urlPattern.ReplaceAllString(text, " ")

	fields := strings.FieldsFunc(lower.String(text), func(r rune) bool {
		return !unicode.IsLetter(r)
	})

	tokens := fields[:0]
	for _, word := range fields {
		if len([]rune(word)) < 2 {
			continue
		}
		if _, skip := a.excluded[word]; skip {
			continue
		}
		tokens = append(tokens, word)
	}
	return tokens
}

// TopWords는 모든 질문에서 가장 많이 등장한 단어 n개를 반환합니다.
// 횟수 내림차순이며 같은 횟수는 먼저 등장한 단어가 앞섭니다.
func (a *Analyzer) TopWords(questions []string, n int) []WordCount {
	lower := cases.Lower(language.Und)
	counts := make(map[string]int)
	var order []string

	for _, question := range questions {
		for _, word := range a.tokenize(lower, question) {
			if counts[word] == 0 {
				order = append(order, word)
			}
			counts[word]++
		}
	}

	result := make([]WordCount, 0, len(order))
	for _, word := range order {
		result = append(result, WordCount{Word: word, Count: counts[word]})
	}

	slices.SortStableFunc(result, func(x, y WordCount) int {
		return y.Count - x.Count
	})

	if n >= 0 && len(result) > n {
		result = result[:n]
	}
	return result
}
