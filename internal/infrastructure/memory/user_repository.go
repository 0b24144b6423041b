package memory

import (
	"context"
	"sync"

	"github.com/oksasatya/go-user-orders-api/internal/domain/entity"
	"github.com/oksasatya/go-user-orders-api/internal/domain/repository"
)

// UserRepository is an in-memory implementation of repository.UserRepository with
// the same visibility rules as the MongoDB adapter: reads only see active users and
// never carry the password. It backs STORE_DRIVER=memory and the unit tests.
type UserRepository struct {
	mu        sync.Mutex
	users     []entity.User
	createErr error
}

func NewUserRepository() *UserRepository {
	return &UserRepository{}
}

// WithCreateError makes every subsequent Create return err.
func (r *UserRepository) WithCreateError(err error) *UserRepository {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.createErr = err
	return r
}

// Stored returns the record as persisted, password hash and inactive users included.
func (r *UserRepository) Stored(userID int64) (entity.User, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.UserID == userID {
			return clone(u), true
		}
	}
	return entity.User{}, false
}

func clone(u entity.User) entity.User {
	u.Hobbies = append([]string(nil), u.Hobbies...)
	u.Orders = append([]entity.Order(nil), u.Orders...)
	return u
}

func public(u entity.User) *entity.User {
	c := clone(u)
	c.Password = ""
	return &c
}

func (r *UserRepository) active(userID int64) int {
	for i, u := range r.users {
		if u.UserID == userID && u.IsActive {
			return i
		}
	}
	return -1
}

func (r *UserRepository) Create(_ context.Context, u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	for _, e := range r.users {
		if e.UserID == u.UserID || e.Username == u.Username || e.Email == u.Email {
			return repository.ErrDuplicateKey
		}
	}
	r.users = append(r.users, clone(*u))
	return nil
}

func (r *UserRepository) FindByUserID(_ context.Context, userID int64) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.active(userID)
	if i < 0 {
		return nil, repository.ErrNotFound
	}
	return public(r.users[i]), nil
}

func (r *UserRepository) FindAll(_ context.Context) ([]entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]entity.User, 0)
	for _, u := range r.users {
		if u.IsActive {
			out = append(out, *public(u))
		}
	}
	return out, nil
}

func (r *UserRepository) Update(_ context.Context, userID int64, p entity.UserPatch) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.active(userID)
	if i < 0 {
		return nil, repository.ErrNotFound
	}
	for j, e := range r.users {
		if j == i {
			continue
		}
		if (p.Username != nil && e.Username == *p.Username) || (p.Email != nil && e.Email == *p.Email) {
			return nil, repository.ErrDuplicateKey
		}
	}

	u := &r.users[i]
	if p.Username != nil {
		u.Username = *p.Username
	}
	if p.FullName != nil {
		u.FullName = *p.FullName
	}
	if p.Age != nil {
		u.Age = *p.Age
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.IsActive != nil {
		u.IsActive = *p.IsActive
	}
	if p.Address != nil {
		u.Address = *p.Address
	}
	u.Hobbies = append(u.Hobbies, p.Hobbies...)
	u.Orders = append(u.Orders, p.Orders...)
	return public(*u), nil
}

func (r *UserRepository) Delete(_ context.Context, userID int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.active(userID)
	if i < 0 {
		return 0, nil
	}
	r.users = append(r.users[:i], r.users[i+1:]...)
	return 1, nil
}

func (r *UserRepository) OrdersByUserID(_ context.Context, userID int64) ([]entity.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.active(userID)
	if i < 0 {
		return nil, repository.ErrNotFound
	}
	return append([]entity.Order{}, r.users[i].Orders...), nil
}

// TotalOrderPrice sums order prices; quantity is not factored in.
func (r *UserRepository) TotalOrderPrice(_ context.Context, userID int64) (float64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var total float64
	if i := r.active(userID); i >= 0 {
		for _, o := range r.users[i].Orders {
			total += o.Price
		}
	}
	return total, nil
}

var _ repository.UserRepository = (*UserRepository)(nil)
