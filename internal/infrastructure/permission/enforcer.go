package permission

import (
	"fmt"
	"sync"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	gormadapter "github.com/casbin/gorm-adapter/v3"
	"gorm.io/gorm"

	"github.com/openhelpdesk/helpdesk/internal/domain/permission"
	"github.com/openhelpdesk/helpdesk/internal/shared/logger"
)

var _ permission.Enforcer = (*Enforcer)(nil)

// queueAccessModel grants an exact (subject, queue, action) triple. There
// are no roles and no wildcards.
const queueAccessModel = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = r.sub == p.sub && r.obj == p.obj && r.act == p.act
`

type Enforcer struct {
	enforcer *casbin.Enforcer
	mu       sync.RWMutex
	logger   logger.Interface
}

// NewEnforcer stores policies in the casbin_rule table. modelPath replaces
// the built-in model when set.
func NewEnforcer(db *gorm.DB, modelPath string, log logger.Interface) (*Enforcer, error) {
	adapter, err := gormadapter.NewAdapterByDB(db)
	if err != nil {
		return nil, fmt.Errorf("failed to create casbin adapter: %w", err)
	}

	var m model.Model
	if modelPath != "" {
		m, err = model.NewModelFromFile(modelPath)
	} else {
		m, err = model.NewModelFromString(queueAccessModel)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load casbin model: %w", err)
	}

	enforcer, err := casbin.NewEnforcer(m, adapter)
	if err != nil {
		return nil, fmt.Errorf("failed to create casbin enforcer: %w", err)
	}

	if err := enforcer.LoadPolicy(); err != nil {
		return nil, fmt.Errorf("failed to load policy: %w", err)
	}

	return &Enforcer{
		enforcer: enforcer,
		logger:   log,
	}, nil
}

func (e *Enforcer) Enforce(subject string, object string, action string) (bool, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	allowed, err := e.enforcer.Enforce(subject, object, action)
	if err != nil {
		e.logger.Errorw("permission check failed", "error", err, "subject", subject, "object", object, "action", action)
		return false, fmt.Errorf("permission check failed: %w", err)
	}

	return allowed, nil
}

// AddPolicy is idempotent. The adapter persists the rule immediately.
func (e *Enforcer) AddPolicy(subject string, object string, action string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, err := e.enforcer.AddPolicy(subject, object, action); err != nil {
		e.logger.Errorw("failed to add policy", "error", err, "subject", subject, "object", object)
		return fmt.Errorf("failed to add policy: %w", err)
	}
	return nil
}

func (e *Enforcer) RemovePolicy(subject string, object string, action string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, err := e.enforcer.RemovePolicy(subject, object, action); err != nil {
		e.logger.Errorw("failed to remove policy", "error", err, "subject", subject, "object", object)
		return fmt.Errorf("failed to remove policy: %w", err)
	}
	return nil
}

// PoliciesFor lists the (subject, object, action) rules held by subject.
func (e *Enforcer) PoliciesFor(subject string) ([][]string, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	policies, err := e.enforcer.GetFilteredPolicy(0, subject)
	if err != nil {
		return nil, fmt.Errorf("failed to get policies: %w", err)
	}
	return policies, nil
}

func (e *Enforcer) RenameObject(from, to string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	rules, err := e.enforcer.GetFilteredPolicy(1, from)
	if err != nil {
		return fmt.Errorf("failed to get policies for %s: %w", from, err)
	}
	if len(rules) == 0 {
		return nil
	}
	moved := make([][]string, 0, len(rules))
	for _, r := range rules {
		n := append([]string{}, r...)
		n[1] = to
		moved = append(moved, n)
	}
	if _, err := e.enforcer.AddPoliciesEx(moved); err != nil {
		return fmt.Errorf("failed to add policies for %s: %w", to, err)
	}
	if _, err := e.enforcer.RemoveFilteredPolicy(1, from); err != nil {
		return fmt.Errorf("failed to remove policies for %s: %w", from, err)
	}
	e.logger.Infow("moved queue permissions", "from", from, "to", to, "count", len(moved))
	return nil
}

func (e *Enforcer) RemoveObject(object string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, err := e.enforcer.RemoveFilteredPolicy(1, object); err != nil {
		return fmt.Errorf("failed to remove policies for %s: %w", object, err)
	}
	return nil
}

func (e *Enforcer) LoadPolicy() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.enforcer.LoadPolicy(); err != nil {
		return fmt.Errorf("failed to reload policy: %w", err)
	}

	e.logger.Info("policy reloaded successfully")
	return nil
}
