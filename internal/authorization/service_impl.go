package authorization

import (
	"context"
	_ "embed"
	"errors"
	"strings"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	gormadapter "github.com/casbin/gorm-adapter/v3"
	authdomain "github.com/colmadolabs/colmado/internal/auth/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:embed model.conf
var modelText string

const (
	ObjectCatalog        = "catalog"
	ObjectCheckout       = "checkout"
	ObjectCreditInfo     = "credit_info"
	ObjectCreditCustomer = "credit_customer"
	ObjectOrder          = "order"
)

const (
	ActionView   = "view"
	ActionCreate = "create"
	ActionManage = "manage"
)

var (
	ErrInvalidActor = errors.New("invalid actor")
	ErrForbidden    = errors.New("forbidden")
)

type Service interface {
	Authorize(ctx context.Context, identity authdomain.Identity, object, action string) error
}

type Params struct {
	fx.In

	Log      *zap.Logger
	Enforcer *casbin.SyncedEnforcer
}

type ServiceImpl struct {
	log      *zap.Logger
	enforcer *casbin.SyncedEnforcer
}

func NewEnforcer(db *gorm.DB) (*casbin.SyncedEnforcer, error) {
	adapter, err := gormadapter.NewAdapterByDB(db)
	if err != nil {
		return nil, err
	}
	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, err
	}
	enforcer, err := casbin.NewSyncedEnforcer(m, adapter)
	if err != nil {
		return nil, err
	}
	enforcer.EnableAutoSave(true)
	if err := enforcer.LoadPolicy(); err != nil {
		return nil, err
	}
	if err := seedPolicies(enforcer); err != nil {
		return nil, err
	}
	return enforcer, nil
}

func NewService(p Params) Service {
	return &ServiceImpl{
		log:      p.Log.Named("authorization.service"),
		enforcer: p.Enforcer,
	}
}

func (s *ServiceImpl) Authorize(ctx context.Context, identity authdomain.Identity, object, action string) error {
	_ = ctx
	if identity.IsZero() || !identity.Role.Valid() {
		return ErrInvalidActor
	}
	object = strings.TrimSpace(object)
	action = strings.TrimSpace(action)
	if object == "" || action == "" {
		return ErrForbidden
	}

	subject := "role:" + string(identity.Role)
	allowed, err := s.enforcer.Enforce(subject, object, action)
	if err != nil {
		return err
	}
	if !allowed {
		s.log.Info("authorization denied",
			zap.String("actor_id", identity.UserID.String()),
			zap.String("role", string(identity.Role)),
			zap.String("object", object),
			zap.String("action", action),
		)
		return ErrForbidden
	}
	return nil
}

func seedPolicies(enforcer *casbin.SyncedEnforcer) error {
	policies := [][]string{
		{"role:customer", ObjectCatalog, ActionView},
		{"role:customer", ObjectCheckout, ActionCreate},
		{"role:customer", ObjectCreditInfo, ActionView},
		{"role:customer", ObjectOrder, ActionView},

		{"role:owner", ObjectCatalog, ActionView},
		{"role:owner", ObjectCreditCustomer, ActionView},
		{"role:owner", ObjectCreditCustomer, ActionManage},
		{"role:owner", ObjectOrder, ActionView},

		{"role:driver", ObjectOrder, ActionView},
	}
	for _, policy := range policies {
		if _, err := enforcer.AddPolicy(policy[0], policy[1], policy[2]); err != nil {
			return err
		}
	}
	return nil
}

var Module = fx.Module("authorization",
	fx.Provide(NewEnforcer),
	fx.Provide(NewService),
)
