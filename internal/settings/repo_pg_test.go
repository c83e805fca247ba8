package settings

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func newMockRepo(t *testing.T) (*PGRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return &PGRepo{DB: db}, mock
}

func TestPGRepoGetNullPointer(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now().UTC()

	rows := sqlmock.NewRows([]string{"user_id", "active_plan_id", "updated_at"}).
		AddRow("u1", nil, now)
	mock.ExpectQuery("SELECT user_id, active_plan_id").
		WithArgs("u1").
		WillReturnRows(rows)

	st, err := repo.Get(context.Background(), "u1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if st.ActivePlanID != "" {
		t.Fatalf("expected empty pointer for null column, got %q", st.ActivePlanID)
	}
}

func TestPGRepoGetNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("SELECT user_id, active_plan_id").
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "active_plan_id", "updated_at"}))

	_, err := repo.Get(context.Background(), "u1")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPGRepoClaimActivePlanReturnsWinner(t *testing.T) {
	repo, mock := newMockRepo(t)

	// An existing pointer survives the upsert; the claimer learns who won.
	mock.ExpectQuery("INSERT INTO user_settings").
		WithArgs("u1", "p-loser").
		WillReturnRows(sqlmock.NewRows([]string{"active_plan_id"}).AddRow("p-winner"))

	winner, err := repo.ClaimActivePlan(context.Background(), "u1", "p-loser")
	if err != nil {
		t.Fatalf("ClaimActivePlan: %v", err)
	}
	if winner != "p-winner" {
		t.Fatalf("expected existing pointer returned, got %q", winner)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoSetActivePlan(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec("INSERT INTO user_settings").
		WithArgs("u1", "p1").
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := repo.SetActivePlan(context.Background(), "u1", "p1"); err != nil {
		t.Fatalf("SetActivePlan: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}
