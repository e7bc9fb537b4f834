package catalog

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/p-n-ai/pai-questions/internal/question"
)

// PostgresSource reads the catalog from the questions table.
type PostgresSource struct {
	pool *pgxpool.Pool
}

// NewPostgresSource creates a source backed by pool.
func NewPostgresSource(pool *pgxpool.Pool) *PostgresSource {
	return &PostgresSource{pool: pool}
}

func (s *PostgresSource) Load(ctx context.Context) ([]question.Record, error) {
	if s == nil || s.pool == nil {
		return nil, fmt.Errorf("pool is nil")
	}

	rows, err := s.pool.Query(ctx,
		`SELECT id, course, topic, subtopic, difficulty,
		        question_text, question_images, answer_text, answer_images,
		        answer_video, tags
		 FROM questions
		 ORDER BY position ASC, id ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("query questions: %w", err)
	}
	defer rows.Close()

	records := []question.Record{}
	for rows.Next() {
		var r question.Record
		var video *string
		if err := rows.Scan(
			&r.ID,
			&r.Course,
			&r.Topic,
			&r.Subtopic,
			&r.Difficulty,
			&r.QuestionText,
			&r.QuestionImages,
			&r.AnswerText,
			&r.AnswerImages,
			&video,
			&r.Tags,
		); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		if video != nil {
			r.AnswerVideo = *video
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate questions: %w", err)
	}

	if err := checkIDs(records); err != nil {
		return nil, err
	}
	return records, nil
}

func (s *PostgresSource) String() string {
	return "postgres:questions"
}
