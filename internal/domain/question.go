package domain

import "time"

// QuestionRecord는 질문 로그에 저장되는 질문 한 건입니다.
type QuestionRecord struct {
	UserID   string
	Alias    string
	RealName string
	Category string
	Question string
	AskedAt  time.Time
}
