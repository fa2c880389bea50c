package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/zime/janushbot/internal/domain"
)

// Question은 질문 로그에서 읽어온 질문 한 건입니다.
type Question struct {
	ID       int64     `db:"message_id"`
	UserID   string    `db:"user_id"`
	Alias    string    `db:"alias"`
	Category string    `db:"category"`
	Question string    `db:"question"`
	Date     time.Time `db:"date"`
}

// QuestionLog는 users/categories/messages 테이블에 질문을 기록합니다.
type QuestionLog struct {
	db *sqlx.DB
}

// NewQuestionLog는 새 QuestionLog를 생성합니다.
func NewQuestionLog(db *sqlx.DB) *QuestionLog {
	return &QuestionLog{db: db}
}

// SaveQuestion은 사용자 갱신, 카테고리 확보, 질문 삽입을 한 트랜잭션으로 수행합니다.
// 삽입된 message_id를 반환합니다.
func (l *QuestionLog) SaveQuestion(ctx context.Context, record domain.QuestionRecord) (int64, error) {
	tx, err := l.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("트랜잭션 시작 실패: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, tx.Rebind(`
		INSERT INTO users (user_id, alias, real_name) VALUES (?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE SET alias = excluded.alias, real_name = excluded.real_name`),
		record.UserID, record.Alias, record.RealName,
	)
	if err != nil {
		return 0, fmt.Errorf("사용자 저장 실패: %w", err)
	}

	var categoryID sql.NullInt64
	if record.Category != "" {
		_, err = tx.ExecContext(ctx, tx.Rebind(`
			INSERT INTO categories (name) VALUES (?)
			ON CONFLICT (name) DO NOTHING`),
			record.Category,
		)
		if err != nil {
			return 0, fmt.Errorf("카테고리 저장 실패: %w", err)
		}
		if err := tx.GetContext(ctx, &categoryID, tx.Rebind(`SELECT category_id FROM categories WHERE name = ?`), record.Category); err != nil {
			return 0, fmt.Errorf("카테고리 조회 실패: %w", err)
		}
	}

	askedAt := record.AskedAt
	if askedAt.IsZero() {
		askedAt = time.Now()
	}

	var messageID int64
	err = tx.QueryRowxContext(ctx, tx.Rebind(`
		INSERT INTO messages (user_id, category_id, question, date) VALUES (?, ?, ?, ?)
		RETURNING message_id`),
		record.UserID, categoryID, record.Question, askedAt.UTC(),
	).Scan(&messageID)
	if err != nil {
		return 0, fmt.Errorf("질문 저장 실패: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("트랜잭션 커밋 실패: %w", err)
	}

	return messageID, nil
}

// ListQuestions는 저장된 질문을 오래된 순으로 반환합니다.
func (l *QuestionLog) ListQuestions(ctx context.Context) ([]Question, error) {
	questions := []Question{}
	err := l.db.SelectContext(ctx, &questions, `
		SELECT m.message_id, m.user_id, u.alias, COALESCE(c.name, '') AS category, m.question, m.date
		FROM messages m
		JOIN users u ON u.user_id = m.user_id
		LEFT JOIN categories c ON c.category_id = m.category_id
		ORDER BY m.message_id`)
	if err != nil {
		return nil, fmt.Errorf("질문 목록 조회 실패: %w", err)
	}
	return questions, nil
}

// CountQuestions는 저장된 질문 수를 반환합니다.
func (l *QuestionLog) CountQuestions(ctx context.Context) (int, error) {
	var count int
	if err := l.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM messages`); err != nil {
		return 0, fmt.Errorf("질문 수 조회 실패: %w", err)
	}
	return count, nil
}
