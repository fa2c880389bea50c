package policy

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/samber/mo"
)

// DefaultGreetings는 기본 인사말 목록입니다.
var DefaultGreetings = []string{"hi", "hello", "morning", "hey", "mam rozwolnienie"}

// DefaultForbiddenWords는 기본 금지어 목록입니다.
var DefaultForbiddenWords = []string{"kurwa", "chuj", "pierdol", "jebać", "spierdalaj"}

// PolicyList는 소문자 문자열의 순서 있는 목록입니다.
// 시작 시 한 번 만들고 이후 변경하지 않으므로 동시 읽기에 안전합니다.
type PolicyList struct {
	entries []string
}

// NewPolicyList는 항목을 소문자로 정규화하여 목록을 생성합니다.
// 빈 항목은 제외하고 순서는 유지합니다.
func NewPolicyList(entries []string) PolicyList {
	normalized := make([]string, 0, len(entries))
	for _, entry := range entries {
		entry = strings.ToLower(strings.TrimSpace(entry))
		if entry == "" {
			continue
		}
		normalized = append(normalized, entry)
	}
	return PolicyList{entries: normalized}
}

// Entries는 목록의 복사본을 반환합니다.
func (l PolicyList) Entries() []string {
	result := make([]string, len(l.entries))
	copy(result, l.entries)
	return result
}

// Len은 항목 수를 반환합니다.
func (l PolicyList) Len() int {
	return len(l.entries)
}

// Matcher는 인사말/금지어 판별기입니다.
type Matcher struct {
	greetings PolicyList
	forbidden PolicyList
}

// NewMatcher는 새 Matcher를 생성합니다.
func NewMatcher(greetings, forbidden PolicyList) *Matcher {
	return &Matcher{
		greetings: greetings,
		forbidden: forbidden,
	}
}

// MatchesGreeting은 text에 인사말이 하나라도 포함되어 있는지 확인합니다 (대소문자 무시).
// 인사말은 단어 경계에서만 일치합니다. "nothing"은 "hi"로 판별하지 않습니다.
func (m *Matcher) MatchesGreeting(text string) bool {
	lowered := strings.ToLower(text)
	for _, greeting := range m.greetings.entries {
		if containsWord(lowered, greeting) {
			return true
		}
	}
	return false
}

// containsWord는 phrase가 앞뒤가 글자/숫자가 아닌 위치에 나타나는지 확인합니다.
// 공백이 있는 문구도 하나의 단위로 취급합니다.
func containsWord(text, phrase string) bool {
	for offset := 0; offset <= len(text)-len(phrase); {
		idx := strings.Index(text[offset:], phrase)
		if idx < 0 {
			return false
		}
		start := offset + idx
		end := start + len(phrase)

		before, _ := utf8.DecodeLastRuneInString(text[:start])
		after, _ := utf8.DecodeRuneInString(text[end:])
		if (start == 0 || !isWordRune(before)) && (end == len(text) || !isWordRune(after)) {
			return true
		}

		_, size := utf8.DecodeRuneInString(text[start:])
		offset = start + size
	}
	return false
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

// FirstForbiddenWord는 목록 순서상 처음으로 포함된 금지어를 반환합니다.
// 첫 일치에서 탐색을 멈춥니다.
func (m *Matcher) FirstForbiddenWord(text string) mo.Option[string] {
	lowered := strings.ToLower(text)
	for _, word := range m.forbidden.entries {
		if strings.Contains(lowered, word) {
			return mo.Some(word)
		}
	}
	return mo.None[string]()
}
