package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-user-orders-api/internal/domain/entity"
	repo "github.com/oksasatya/go-user-orders-api/internal/domain/repository"
	"github.com/oksasatya/go-user-orders-api/pkg/mailer"
	mailtpl "github.com/oksasatya/go-user-orders-api/pkg/mailer/templates"
	"github.com/oksasatya/go-user-orders-api/pkg/validation"
)

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrUserAlreadyExists = errors.New("user already exist")
)

// ValidationError carries one message per violated field rule.
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Messages, ",")
}

// Request is a payload the handlers decode before calling the service.
type Request interface {
	Normalize()
}

func newValidationError(issues []validation.Issue) *ValidationError {
	msgs := make([]string, len(issues))
	for i, is := range issues {
		msgs[i] = is.Message
	}
	return &ValidationError{Messages: msgs}
}

// DecodeError reports a payload that could not be decoded into req. A type mismatch
// leaves req partly decoded, so the rules the remaining fields break are reported
// alongside it.
func (s *Service) DecodeError(req Request, err error) *ValidationError {
	var ute *json.UnmarshalTypeError
	if !errors.As(err, &ute) || ute.Field == "" {
		return &ValidationError{Messages: validation.Messages(err, userMessages)}
	}
	typed := validation.Issues(ute, userMessages)[0]

	req.Normalize()
	var rest []validation.Issue
	if verr := s.Validate.Struct(req); verr != nil {
		rest = validation.Issues(verr, userMessages)
	}
	return newValidationError(validation.ReplaceField(rest, typed))
}

// PasswordHasher is implemented by *helpers.Hasher.
type PasswordHasher interface {
	Hash(plain string) (string, error)
}

// JobPublisher enqueues email jobs; *helpers.RabbitPublisher implements it.
type JobPublisher interface {
	PublishJSON(ctx context.Context, body any) error
}

type Service struct {
	Repo         repo.UserRepository
	Hasher       PasswordHasher
	Validate     *validator.Validate
	Logger       *logrus.Logger
	ES           *elasticsearch.Client
	ESUsersIndex string
	Pub          JobPublisher
	Brand        mailtpl.Brand
}

func NewService(repo repo.UserRepository, hasher PasswordHasher, validate *validator.Validate, logger *logrus.Logger, es *elasticsearch.Client, esUsersIndex string, pub JobPublisher, brand mailtpl.Brand) *Service {
	return &Service{
		Repo:         repo,
		Hasher:       hasher,
		Validate:     validate,
		Logger:       logger,
		ES:           es,
		ESUsersIndex: esUsersIndex,
		Pub:          pub,
		Brand:        brand,
	}
}

func (s *Service) check(req any) error {
	if err := s.Validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return err
		}
		return &ValidationError{Messages: validation.Messages(err, userMessages)}
	}
	return nil
}

// exists is the single existence check used by every keyed operation.
func (s *Service) exists(ctx context.Context, userID int64) (*entity.User, error) {
	u, err := s.Repo.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

type createFunc func(ctx context.Context, u *entity.User) error

// withHashedCredential replaces the plaintext password with its hash before next stores the user.
func (s *Service) withHashedCredential(next createFunc) createFunc {
	return func(ctx context.Context, u *entity.User) error {
		hash, err := s.Hasher.Hash(u.Password)
		if err != nil {
			return fmt.Errorf("hash password: %w", err)
		}
		u.Password = hash
		return next(ctx, u)
	}
}

// Create validates the request, rejects an existing userId and stores the user with
// a hashed password. A unique index collision on a concurrent create is reported as
// ErrUserAlreadyExists too.
func (s *Service) Create(ctx context.Context, req CreateUserRequest) (*entity.User, error) {
	req.Normalize()
	if err := s.check(req); err != nil {
		return nil, err
	}

	if _, err := s.exists(ctx, *req.UserID); err == nil {
		return nil, ErrUserAlreadyExists
	} else if !errors.Is(err, ErrUserNotFound) {
		return nil, err
	}

	u := req.toEntity()
	if err := s.withHashedCredential(s.Repo.Create)(ctx, u); err != nil {
		if errors.Is(err, repo.ErrDuplicateKey) {
			return nil, ErrUserAlreadyExists
		}
		return nil, err
	}

	s.syncIndex(ctx, u)
	s.notify(ctx, mailtpl.Welcome, u)
	return u, nil
}

func (s *Service) List(ctx context.Context) ([]entity.User, error) {
	return s.Repo.FindAll(ctx)
}

func (s *Service) Get(ctx context.Context, userID int64) (*entity.User, error) {
	return s.exists(ctx, userID)
}

// Update applies a partial update: scalar fields and sub-documents are overwritten,
// hobbies and orders are appended.
func (s *Service) Update(ctx context.Context, userID int64, req UpdateUserRequest) (*entity.User, error) {
	req.Normalize()
	if err := s.check(req); err != nil {
		return nil, err
	}
	if _, err := s.exists(ctx, userID); err != nil {
		return nil, err
	}

	u, err := s.Repo.Update(ctx, userID, req.toPatch())
	if err != nil {
		switch {
		case errors.Is(err, repo.ErrNotFound):
			return nil, ErrUserNotFound
		case errors.Is(err, repo.ErrDuplicateKey):
			return nil, ErrUserAlreadyExists
		}
		return nil, err
	}

	s.syncIndex(ctx, u)
	return u, nil
}

// Delete removes the user permanently and returns the deleted count.
func (s *Service) Delete(ctx context.Context, userID int64) (int64, error) {
	u, err := s.exists(ctx, userID)
	if err != nil {
		return 0, err
	}
	n, err := s.Repo.Delete(ctx, userID)
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, ErrUserNotFound
	}

	s.removeFromIndex(ctx, userID)
	s.notify(ctx, mailtpl.AccountClosed, u)
	return n, nil
}

func (s *Service) Orders(ctx context.Context, userID int64) ([]entity.Order, error) {
	if _, err := s.exists(ctx, userID); err != nil {
		return nil, err
	}
	orders, err := s.Repo.OrdersByUserID(ctx, userID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	return orders, err
}

// TotalOrderPrice sums the price of every order; quantity is not factored in.
func (s *Service) TotalOrderPrice(ctx context.Context, userID int64) (float64, error) {
	if _, err := s.exists(ctx, userID); err != nil {
		return 0, err
	}
	return s.Repo.TotalOrderPrice(ctx, userID)
}

func (s *Service) notify(ctx context.Context, template string, u *entity.User) {
	if s.Pub == nil || u.Email == "" {
		return
	}
	name := strings.TrimSpace(u.FullName.FirstName + " " + u.FullName.LastName)
	opts := []mailtpl.Option{mailtpl.WithUsername(u.Username), mailtpl.WithUserID(u.UserID), mailtpl.WithTime(time.Now())}

	var data map[string]any
	switch template {
	case mailtpl.Welcome:
		data = mailtpl.NewWelcomeData(s.Brand, name, u.Email, opts...)
	case mailtpl.AccountClosed:
		data = mailtpl.NewAccountClosedData(s.Brand, name, u.Email, opts...)
	default:
		return
	}

	job := mailer.EmailJob{To: u.Email, Template: template, Data: data}
	if err := s.Pub.PublishJSON(ctx, job); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithFields(logrus.Fields{"user_id": u.UserID, "template": template}).Warn("failed to publish email job")
	}
}

// syncIndex keeps the search index in line with the store: active users are
// (re)indexed, inactive ones are removed. The password hash is never indexed.
func (s *Service) syncIndex(ctx context.Context, u *entity.User) {
	if s.ES == nil || s.ESUsersIndex == "" {
		return
	}
	if !u.IsActive {
		s.removeFromIndex(ctx, u.UserID)
		return
	}
	_ = s.indexUser(ctx, u)
}

func (s *Service) indexUser(ctx context.Context, u *entity.User) error {
	doc := map[string]any{
		"userId":   u.UserID,
		"username": u.Username,
		"email":    u.Email,
		"fullName": u.FullName,
		"age":      u.Age,
		"hobbies":  u.Hobbies,
		"address":  u.Address,
	}
	b, _ := json.Marshal(doc)
	req := esapi.IndexRequest{Index: s.ESUsersIndex, DocumentID: strconv.FormatInt(u.UserID, 10), Body: strings.NewReader(string(b)), Refresh: "false"}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, s.ES)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", u.UserID).Warn("es index failed")
		}
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && s.Logger != nil {
		s.Logger.WithField("status", res.Status()).WithField("user_id", u.UserID).Warn("es index response error")
	}
	return nil
}

func (s *Service) removeFromIndex(ctx context.Context, userID int64) {
	if s.ES == nil || s.ESUsersIndex == "" {
		return
	}
	req := esapi.DeleteRequest{Index: s.ESUsersIndex, DocumentID: strconv.FormatInt(userID, 10)}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, s.ES)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", userID).Warn("es delete failed")
		}
		return
	}
	defer func() { _ = res.Body.Close() }()
	// 404 means the user was never indexed.
	if res.IsError() && res.StatusCode != 404 && s.Logger != nil {
		s.Logger.WithField("status", res.Status()).WithField("user_id", userID).Warn("es delete response error")
	}
}

// SearchUsers performs a multi_match search on username, email, names and hobbies.
// It returns an empty result when search is not configured.
func (s *Service) SearchUsers(ctx context.Context, q string, size int) ([]map[string]any, error) {
	if s.ES == nil || s.ESUsersIndex == "" {
		return []map[string]any{}, nil
	}
	if size <= 0 || size > 50 {
		size = 10
	}
	query := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":  q,
				"fields": []string{"username^2", "email^2", "fullName.firstName", "fullName.lastName", "hobbies"},
			},
		},
		"size": size,
	}
	b, _ := json.Marshal(query)

	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := s.ES.Search(s.ES.Search.WithContext(c), s.ES.Search.WithIndex(s.ESUsersIndex), s.ES.Search.WithBody(strings.NewReader(string(b))))
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = res.Body.Close()
	}()
	if res.IsError() {
		return nil, fmt.Errorf("search users: %s", res.Status())
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				ID     string         `json:"_id"`
				Source map[string]any `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}

	out := make([]map[string]any, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		out = append(out, h.Source)
	}
	return out, nil
}
