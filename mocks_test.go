package auth_test

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"

	auth "github.com/goliatone/go-retail-auth"
	"github.com/goliatone/go-retail-auth/middleware/jwtware"
)

const testSigningKey = "test-signing-key-with-32-bytes!!"

// MockUserStore implements auth.UserStore
type MockUserStore struct {
	mock.Mock
}

func (m *MockUserStore) FindUserByEmail(ctx context.Context, email string) (*auth.UserRecord, error) {
	args := m.Called(ctx, email)
	record, _ := args.Get(0).(*auth.UserRecord)
	return record, args.Error(1)
}

// MockConfig implements auth.Config
type MockConfig struct {
	mock.Mock
}

func (m *MockConfig) GetSigningKey() string     { return m.Called().String(0) }
func (m *MockConfig) GetTokenExpiration() int   { return m.Called().Int(0) }
func (m *MockConfig) GetIssuer() string         { return m.Called().String(0) }
func (m *MockConfig) GetContextKey() string     { return m.Called().String(0) }
func (m *MockConfig) GetAuthScheme() string     { return m.Called().String(0) }
func (m *MockConfig) GetCookieName() string     { return m.Called().String(0) }
func (m *MockConfig) GetCookieMaxAge() int      { return m.Called().Int(0) }
func (m *MockConfig) GetCookieSameSite() string { return m.Called().String(0) }
func (m *MockConfig) GetCookieSecure() bool     { return m.Called().Bool(0) }
func (m *MockConfig) GetAudience() []string {
	aud, _ := m.Called().Get(0).([]string)
	return aud
}
func (m *MockConfig) GetTransportPolicy() jwtware.TransportPolicy {
	return m.Called().Get(0).(jwtware.TransportPolicy)
}

func newMockConfig(policy jwtware.TransportPolicy) *MockConfig {
	cfg := new(MockConfig)
	cfg.On("GetSigningKey").Return(testSigningKey).Maybe()
	cfg.On("GetTokenExpiration").Return(24).Maybe()
	cfg.On("GetIssuer").Return("retail-auth").Maybe()
	cfg.On("GetAudience").Return([]string{"retail:pos"}).Maybe()
	cfg.On("GetContextKey").Return("user").Maybe()
	cfg.On("GetAuthScheme").Return("Bearer").Maybe()
	cfg.On("GetCookieName").Return("token").Maybe()
	cfg.On("GetCookieMaxAge").Return(24).Maybe()
	cfg.On("GetCookieSameSite").Return("Lax").Maybe()
	cfg.On("GetCookieSecure").Return(false).Maybe()
	cfg.On("GetTransportPolicy").Return(policy).Maybe()
	return cfg
}

// recordingSink collects activity events
type recordingSink struct {
	mu     sync.Mutex
	events []auth.ActivityEvent
}

func (r *recordingSink) Record(_ context.Context, e auth.ActivityEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *recordingSink) Events() []auth.ActivityEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]auth.ActivityEvent(nil), r.events...)
}

func (r *recordingSink) Last() auth.ActivityEvent {
	events := r.Events()
	if len(events) == 0 {
		return auth.ActivityEvent{}
	}
	return events[len(events)-1]
}
