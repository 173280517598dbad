package sqlstore

import (
	"database/sql"
	"fmt"

	"github.com/julianstephens/innerlevel/internal/constants"
	"github.com/julianstephens/innerlevel/internal/logger"
	"github.com/julianstephens/innerlevel/internal/models"
	"github.com/julianstephens/innerlevel/internal/storage"
)

// querier is the part of *sql.DB and *sql.Tx the collections need.
type querier interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}

type sqlTx struct {
	s *Store
	q querier
}

func (t *sqlTx) exec(query string, args ...any) (sql.Result, error) {
	return t.q.Exec(t.s.rebind(query), args...)
}

func (t *sqlTx) query(query string, args ...any) (*sql.Rows, error) {
	return t.q.Query(t.s.rebind(query), args...)
}

func (t *sqlTx) queryRow(query string, args ...any) *sql.Row {
	return t.q.QueryRow(t.s.rebind(query), args...)
}

// reader returns a view that runs outside any transaction.
func (s *Store) reader() (*sqlTx, error) {
	if s.db == nil {
		return nil, storage.ErrNotLoaded
	}
	return &sqlTx{s: s, q: s.db}, nil
}

// scanAll decodes every row with scan, skipping rows that fail to decode or
// validate.
func scanAll[T any, P interface {
	*T
	Validate() error
}](table string, rows *sql.Rows, scan func(*sql.Rows, *T) error) ([]T, error) {
	defer rows.Close()
	out := []T{}
	for rows.Next() {
		var item T
		if err := scan(rows, &item); err != nil {
			logger.Warn("Skipping undecodable row", "table", table, "error", err)
			continue
		}
		if err := P(&item).Validate(); err != nil {
			logger.Warn("Skipping invalid row", "table", table, "error", err)
			continue
		}
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", table, err)
	}
	return out, nil
}

func (t *sqlTx) LoadActivityLog() ([]models.ActivityLogEntry, error) {
	rows, err := t.query(`SELECT id, date, category, description, points, comment, emotion_before, emotion_after, energy_level
		FROM activity_log ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("failed to query activity log: %w", err)
	}
	return scanAll("activity_log", rows, func(r *sql.Rows, e *models.ActivityLogEntry) error {
		var energy sql.NullInt64
		if err := r.Scan(&e.ID, &e.Date, &e.Category, &e.Description, &e.Points, &e.Comment, &e.EmotionBefore, &e.EmotionAfter, &energy); err != nil {
			return err
		}
		if energy.Valid {
			e.EnergyLevel = models.Energy(int(energy.Int64))
		}
		return nil
	})
}

func (t *sqlTx) AppendActivityLog(e models.ActivityLogEntry) error {
	if err := e.Validate(); err != nil {
		return err
	}
	var count int
	if err := t.queryRow("SELECT COUNT(*) FROM activity_log WHERE id = ?", e.ID).Scan(&count); err != nil {
		return fmt.Errorf("failed to check activity: %w", err)
	}
	if count > 0 {
		return fmt.Errorf("%w: activity %s", storage.ErrAlreadyExists, e.ID)
	}

	var energy sql.NullInt64
	if e.EnergyLevel != nil {
		energy = sql.NullInt64{Int64: int64(*e.EnergyLevel), Valid: true}
	}
	_, err := t.exec(`INSERT INTO activity_log (id, date, category, description, points, comment, emotion_before, emotion_after, energy_level)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Date, e.Category, e.Description, e.Points, e.Comment, e.EmotionBefore, e.EmotionAfter, energy)
	if err != nil {
		return fmt.Errorf("failed to append activity: %w", err)
	}
	return nil
}

func (t *sqlTx) DeleteActivityLog(id string) error {
	res, err := t.exec("DELETE FROM activity_log WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete activity: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete activity: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: activity %s", storage.ErrNotFound, id)
	}
	return nil
}

func (t *sqlTx) LoadTodos() ([]models.TodoItem, error) {
	rows, err := t.query("SELECT id, task, due_date, priority, status, points FROM todos ORDER BY seq")
	if err != nil {
		return nil, fmt.Errorf("failed to query todos: %w", err)
	}
	return scanAll("todos", rows, func(r *sql.Rows, it *models.TodoItem) error {
		var priority, status string
		if err := r.Scan(&it.ID, &it.Task, &it.DueDate, &priority, &status, &it.Points); err != nil {
			return err
		}
		it.Priority = constants.Priority(priority)
		it.Status = constants.TodoStatus(status)
		return nil
	})
}

func (t *sqlTx) SaveTodos(todos []models.TodoItem) error {
	if err := storage.ValidateAll(todos); err != nil {
		return err
	}
	if _, err := t.exec("DELETE FROM todos"); err != nil {
		return fmt.Errorf("failed to clear todos: %w", err)
	}
	for _, it := range todos {
		if _, err := t.exec("INSERT INTO todos (id, task, due_date, priority, status, points) VALUES (?, ?, ?, ?, ?, ?)",
			it.ID, it.Task, it.DueDate, string(it.Priority), string(it.Status), it.Points); err != nil {
			return fmt.Errorf("failed to save todo %s: %w", it.ID, err)
		}
	}
	return nil
}

func (t *sqlTx) LoadHabits() ([]models.Habit, error) {
	rows, err := t.query("SELECT name, category, points FROM habits ORDER BY seq")
	if err != nil {
		return nil, fmt.Errorf("failed to query habits: %w", err)
	}
	return scanAll("habits", rows, func(r *sql.Rows, h *models.Habit) error {
		return r.Scan(&h.Name, &h.Category, &h.Points)
	})
}

func (t *sqlTx) SaveHabits(habits []models.Habit) error {
	if err := storage.ValidateAll(habits); err != nil {
		return err
	}
	if _, err := t.exec("DELETE FROM habits"); err != nil {
		return fmt.Errorf("failed to clear habits: %w", err)
	}
	for _, h := range habits {
		if _, err := t.exec("INSERT INTO habits (name, category, points) VALUES (?, ?, ?)", h.Name, h.Category, h.Points); err != nil {
			return fmt.Errorf("failed to save habit %s: %w", h.Name, err)
		}
	}
	return nil
}

func (t *sqlTx) LoadRewards() (models.RewardBook, error) {
	rows, err := t.query("SELECT id, name, description, points_required, category, redeemed FROM rewards ORDER BY seq")
	if err != nil {
		return models.RewardBook{}, fmt.Errorf("failed to query rewards: %w", err)
	}
	rewards, err := scanAll("rewards", rows, func(r *sql.Rows, rw *models.Reward) error {
		return r.Scan(&rw.ID, &rw.Name, &rw.Description, &rw.PointsRequired, &rw.Category, &rw.Redeemed)
	})
	if err != nil {
		return models.RewardBook{}, err
	}

	rows, err = t.query("SELECT reward_id, name, points_cost, redeemed_on FROM redemptions ORDER BY seq")
	if err != nil {
		return models.RewardBook{}, fmt.Errorf("failed to query redemptions: %w", err)
	}
	history, err := scanAll("redemptions", rows, func(r *sql.Rows, rd *models.Redemption) error {
		return r.Scan(&rd.RewardID, &rd.Name, &rd.PointsCost, &rd.RedeemedOn)
	})
	if err != nil {
		return models.RewardBook{}, err
	}

	return models.RewardBook{Rewards: rewards, History: history}, nil
}

func (t *sqlTx) SaveRewards(book models.RewardBook) error {
	if err := book.Validate(); err != nil {
		return err
	}
	if _, err := t.exec("DELETE FROM rewards"); err != nil {
		return fmt.Errorf("failed to clear rewards: %w", err)
	}
	for _, r := range book.Rewards {
		if _, err := t.exec("INSERT INTO rewards (id, name, description, points_required, category, redeemed) VALUES (?, ?, ?, ?, ?, ?)",
			r.ID, r.Name, r.Description, r.PointsRequired, r.Category, r.Redeemed); err != nil {
			return fmt.Errorf("failed to save reward %s: %w", r.ID, err)
		}
	}
	if _, err := t.exec("DELETE FROM redemptions"); err != nil {
		return fmt.Errorf("failed to clear redemptions: %w", err)
	}
	for _, rd := range book.History {
		if _, err := t.exec("INSERT INTO redemptions (reward_id, name, points_cost, redeemed_on) VALUES (?, ?, ?, ?)",
			rd.RewardID, rd.Name, rd.PointsCost, rd.RedeemedOn); err != nil {
			return fmt.Errorf("failed to save redemption: %w", err)
		}
	}
	return nil
}

func (t *sqlTx) LoadEmotionalLog() ([]models.EmotionalCheckIn, error) {
	rows, err := t.query(`SELECT id, date, morning_emotion, morning_energy, morning_notes, evening_emotion, evening_energy, evening_notes, gratitude
		FROM emotional_log ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("failed to query emotional log: %w", err)
	}
	return scanAll("emotional_log", rows, func(r *sql.Rows, c *models.EmotionalCheckIn) error {
		return r.Scan(&c.ID, &c.Date, &c.MorningEmotion, &c.MorningEnergy, &c.MorningNotes, &c.EveningEmotion, &c.EveningEnergy, &c.EveningNotes, &c.Gratitude)
	})
}

func (t *sqlTx) AppendEmotionalLog(c models.EmotionalCheckIn) error {
	if err := c.Validate(); err != nil {
		return err
	}
	_, err := t.exec(`INSERT INTO emotional_log (id, date, morning_emotion, morning_energy, morning_notes, evening_emotion, evening_energy, evening_notes, gratitude)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.Date, c.MorningEmotion, c.MorningEnergy, c.MorningNotes, c.EveningEmotion, c.EveningEnergy, c.EveningNotes, c.Gratitude)
	if err != nil {
		return fmt.Errorf("failed to append check-in: %w", err)
	}
	return nil
}

func (s *Store) LoadActivityLog() ([]models.ActivityLogEntry, error) {
	r, err := s.reader()
	if err != nil {
		return nil, err
	}
	return r.LoadActivityLog()
}

func (s *Store) AppendActivityLog(e models.ActivityLogEntry) error {
	return s.Update(func(tx storage.Tx) error { return tx.AppendActivityLog(e) })
}

func (s *Store) DeleteActivityLog(id string) error {
	return s.Update(func(tx storage.Tx) error { return tx.DeleteActivityLog(id) })
}

func (s *Store) LoadTodos() ([]models.TodoItem, error) {
	r, err := s.reader()
	if err != nil {
		return nil, err
	}
	return r.LoadTodos()
}

func (s *Store) SaveTodos(todos []models.TodoItem) error {
	return s.Update(func(tx storage.Tx) error { return tx.SaveTodos(todos) })
}

func (s *Store) LoadHabits() ([]models.Habit, error) {
	r, err := s.reader()
	if err != nil {
		return nil, err
	}
	return r.LoadHabits()
}

func (s *Store) SaveHabits(habits []models.Habit) error {
	return s.Update(func(tx storage.Tx) error { return tx.SaveHabits(habits) })
}

func (s *Store) LoadRewards() (models.RewardBook, error) {
	r, err := s.reader()
	if err != nil {
		return models.RewardBook{}, err
	}
	return r.LoadRewards()
}

func (s *Store) SaveRewards(book models.RewardBook) error {
	return s.Update(func(tx storage.Tx) error { return tx.SaveRewards(book) })
}

func (s *Store) LoadEmotionalLog() ([]models.EmotionalCheckIn, error) {
	r, err := s.reader()
	if err != nil {
		return nil, err
	}
	return r.LoadEmotionalLog()
}

func (s *Store) AppendEmotionalLog(c models.EmotionalCheckIn) error {
	return s.Update(func(tx storage.Tx) error { return tx.AppendEmotionalLog(c) })
}
