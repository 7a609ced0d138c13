// exposes a Store interface that is passed to API calls and the alarm scheduler
package db

import (
	"github.com/jmoiron/sqlx"

	"github.com/layl-app/layl/internal/model"
)

type Store interface {
	// user functions
	CreateUser(email, hashedPassword string, name *string) (int, error)
	GetUserByEmail(email string) (*model.User, error)
	GetUserByID(id int) (*model.User, error)
	UpdateUserProfile(id int, email string, name *string) error

	// alarm functions
	CreateAlarm(a model.Alarm) (model.Alarm, error)
	GetAlarmByID(id string) (model.Alarm, error)
	ListAlarms() ([]model.Alarm, error)
	UpdateAlarm(a model.Alarm) error
	DeleteAlarm(id string) error

	// app state: whole-value JSON records keyed by name
	GetState(key string, out any) (bool, error)
	SetState(key string, value any) error
}

type pgStore struct {
	db *sqlx.DB
}

// compile-time check that pgStore implements Store
// required so linter doesn't complain
var _ Store = (*pgStore)(nil)

func NewStore(database *sqlx.DB) Store {
	return &pgStore{db: database}
}

func (s *pgStore) CreateUser(email, hashedPassword string, name *string) (int, error) {
	return CreateUser(email, hashedPassword, name)
}

func (s *pgStore) GetUserByEmail(email string) (*model.User, error) {
	return GetUserByEmail(email)
}

func (s *pgStore) GetUserByID(id int) (*model.User, error) {
	return GetUserByID(id)
}

func (s *pgStore) UpdateUserProfile(id int, email string, name *string) error {
	return UpdateUserProfile(id, email, name)
}

func (s *pgStore) CreateAlarm(a model.Alarm) (model.Alarm, error) {
	return CreateAlarm(a)
}

func (s *pgStore) GetAlarmByID(id string) (model.Alarm, error) {
	return GetAlarmByID(id)
}

func (s *pgStore) ListAlarms() ([]model.Alarm, error) {
	return ListAlarms()
}

func (s *pgStore) UpdateAlarm(a model.Alarm) error {
	return UpdateAlarm(a)
}

func (s *pgStore) DeleteAlarm(id string) error {
	return DeleteAlarm(id)
}

func (s *pgStore) GetState(key string, out any) (bool, error) {
	return GetState(key, out)
}

func (s *pgStore) SetState(key string, value any) error {
	return SetState(key, value)
}
