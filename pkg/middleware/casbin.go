package middleware

import (
	"net/http"

	"CollegeNoticeBoard/internal/auth"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// Requests are matched on the echo route pattern, so p.obj is written the
// way routes are registered.
const rbacModel = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = g(r.sub, p.sub) && keyMatch2(r.obj, p.obj) && r.act == p.act
`

var policies = [][]string{
	{string(auth.RoleStudent), "/api/profile", http.MethodGet},
	{string(auth.RoleStudent), "/api/notices", http.MethodGet},
	{string(auth.RoleStudent), "/api/notices/stream", http.MethodGet},
	{string(auth.RoleStudent), "/api/notices/:id", http.MethodGet},
	{string(auth.RoleStudent), "/api/notices/:id/stream", http.MethodGet},
	{string(auth.RoleStudent), "/api/notices/:id/views", http.MethodGet},
	{string(auth.RoleStudent), "/api/notices/:id/views", http.MethodPost},
	{string(auth.RoleTeacher), "/api/notices", http.MethodPost},
	{string(auth.RoleTeacher), "/api/notices/:id", http.MethodPut},
	{string(auth.RoleTeacher), "/api/notices/:id", http.MethodDelete},
	{string(auth.RoleAdmin), "/api/stats", http.MethodGet},
}

// Admins can do what teachers can, teachers what students can.
var roleInheritance = [][]string{
	{string(auth.RoleTeacher), string(auth.RoleStudent)},
	{string(auth.RoleAdmin), string(auth.RoleTeacher)},
}

// RBAC authorizes requests by the caller's role.
type RBAC struct {
	enforcer *casbin.Enforcer
	logger   *zap.Logger
}

func NewRBAC(logger *zap.Logger) (*RBAC, error) {
	m, err := model.NewModelFromString(rbacModel)
	if err != nil {
		return nil, err
	}
	enforcer, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, err
	}
	if _, err := enforcer.AddPolicies(policies); err != nil {
		return nil, err
	}
	if _, err := enforcer.AddGroupingPolicies(roleInheritance); err != nil {
		return nil, err
	}
	return &RBAC{enforcer: enforcer, logger: logger.Named("rbac")}, nil
}

// Allowed reports whether role may call method on the route path.
func (r *RBAC) Allowed(role auth.Role, path, method string) (bool, error) {
	return r.enforcer.Enforce(string(auth.Normalize(string(role))), path, method)
}

// Middleware enforces the policy. It runs after JWTMiddleware.
func (r *RBAC) Middleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		identity, ok := auth.IdentityFrom(c)
		if !ok {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Invalid or missing token"})
		}
		allowed, err := r.Allowed(identity.Role, c.Path(), c.Request().Method)
		if err != nil {
			r.logger.Error("casbin enforce", zap.Error(err))
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "RBAC system error"})
		}
		if !allowed {
			r.logger.Debug("denied", zap.String("role", string(identity.Role)), zap.String("path", c.Path()), zap.String("method", c.Request().Method))
			return c.JSON(http.StatusForbidden, map[string]string{"error": "Forbidden: insufficient permissions"})
		}
		return next(c)
	}
}
