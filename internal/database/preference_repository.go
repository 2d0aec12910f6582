package database

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
)

// UserPreference controls the learning-reminder behavior for one user.
// IgnoredKeywords is stored as a JSON array of strings.
type UserPreference struct {
	UserID                      int64     `db:"user_id"                        json:"user_id"`
	EnableLearningReminder      bool      `db:"enable_learning_reminder"       json:"enable_learning_reminder"`
	EnableContentFilterReminder bool      `db:"enable_content_filter_reminder" json:"enable_content_filter_reminder"`
	IgnoredKeywords             string    `db:"ignored_keywords"               json:"-"`
	CreatedAt                   time.Time `db:"created_at"                     json:"created_at"`
	UpdatedAt                   time.Time `db:"updated_at"                     json:"updated_at"`
}

// IgnoredList decodes the ignored-keywords JSON column. A corrupt column
// yields an empty list, not an error.
func (p *UserPreference) IgnoredList() []string {
	if p.IgnoredKeywords == "" {
		return nil
	}
	var list []string
	if err := json.Unmarshal([]byte(p.IgnoredKeywords), &list); err != nil {
		return nil
	}
	return list
}

// PreferenceRepository handles database operations for user preferences.
type PreferenceRepository struct {
	db *sqlx.DB
}

// NewPreferenceRepository creates a new preference repository.
func NewPreferenceRepository(db *sqlx.DB) *PreferenceRepository {
	return &PreferenceRepository{db: db}
}

// GetOrCreate fetches a user's preference row, inserting the default row on
// first access.
func (r *PreferenceRepository) GetOrCreate(ctx context.Context, userID int64) (*UserPreference, error) {
	insert := `
		INSERT INTO user_preferences (user_id) VALUES (?)
		ON CONFLICT (user_id) DO NOTHING
	`
	if _, err := r.db.ExecContext(ctx, insert, userID); err != nil {
		return nil, fmt.Errorf("create preference for user %d: %w", userID, err)
	}

	var pref UserPreference
	query := `
		SELECT user_id, enable_learning_reminder, enable_content_filter_reminder,
		       ignored_keywords, created_at, updated_at
		FROM user_preferences
		WHERE user_id = ?
	`
	if err := r.db.GetContext(ctx, &pref, query, userID); err != nil {
		return nil, fmt.Errorf("get preference for user %d: %w", userID, err)
	}
	return &pref, nil
}

// Update stores the reminder toggles for a user.
func (r *PreferenceRepository) Update(ctx context.Context, pref *UserPreference) error {
	query := `
		UPDATE user_preferences
		SET enable_learning_reminder = ?, enable_content_filter_reminder = ?,
		    updated_at = CURRENT_TIMESTAMP
		WHERE user_id = ?
	`
	res, err := r.db.ExecContext(ctx, query,
		pref.EnableLearningReminder, pref.EnableContentFilterReminder, pref.UserID)
	if err != nil {
		return fmt.Errorf("update preference for user %d: %w", pref.UserID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("update preference for user %d: no such user", pref.UserID)
	}
	return nil
}

// IgnoreKeyword appends a keyword to the user's ignore list. Comparison is
// case-insensitive; adding an already ignored keyword is a no-op.
func (r *PreferenceRepository) IgnoreKeyword(ctx context.Context, userID int64, keyword string) error {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return fmt.Errorf("ignore keyword for user %d: empty keyword", userID)
	}

	pref, err := r.GetOrCreate(ctx, userID)
	if err != nil {
		return err
	}

	list := pref.IgnoredList()
	for _, k := range list {
		if strings.EqualFold(k, keyword) {
			return nil
		}
	}
	list = append(list, keyword)

	encoded, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("encode ignored keywords: %w", err)
	}

	query := `
		UPDATE user_preferences
		SET ignored_keywords = ?, updated_at = CURRENT_TIMESTAMP
		WHERE user_id = ?
	`
	if _, err := r.db.ExecContext(ctx, query, string(encoded), userID); err != nil {
		return fmt.Errorf("store ignored keywords for user %d: %w", userID, err)
	}
	return nil
}

// IsKeywordIgnored reports whether the user chose to silence reminders for
// this exact keyword.
func (r *PreferenceRepository) IsKeywordIgnored(ctx context.Context, userID int64, keyword string) (bool, error) {
	pref, err := r.GetOrCreate(ctx, userID)
	if err != nil {
		return false, err
	}
	for _, k := range pref.IgnoredList() {
		if strings.EqualFold(k, keyword) {
			return true, nil
		}
	}
	return false, nil
}
