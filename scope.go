package scopager

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AccessScope bounds which rows a query may ever return: a set of tenant
// identifiers and/or a set of resource identifiers. It is constructed by the
// caller from an authenticated context, passed in per request and never
// mutated. The zero value denies everything.
type AccessScope struct {
	tenantIDs   []uuid.UUID
	resourceIDs []uuid.UUID
}

func NewAccessScope(tenantIDs, resourceIDs []uuid.UUID) AccessScope {
	return AccessScope{tenantIDs: tenantIDs, resourceIDs: resourceIDs}
}

// TenantScope grants access to everything within the given tenants.
func TenantScope(ids ...uuid.UUID) AccessScope {
	return AccessScope{tenantIDs: ids}
}

// ResourceScope grants access to the given resources only.
func ResourceScope(ids ...uuid.UUID) AccessScope {
	return AccessScope{resourceIDs: ids}
}

func (s AccessScope) TenantIDs() []uuid.UUID   { return s.tenantIDs }
func (s AccessScope) ResourceIDs() []uuid.UUID { return s.resourceIDs }
func (s AccessScope) HasTenants() bool         { return len(s.tenantIDs) > 0 }
func (s AccessScope) HasResources() bool       { return len(s.resourceIDs) > 0 }
func (s AccessScope) IsEmpty() bool            { return !s.HasTenants() && !s.HasResources() }

// Scopable declares the security columns of an entity. An empty column name
// means the entity does not have that column.
type Scopable interface {
	TableName() string
	TenantColumn() string
	ResourceColumn() string
}

// scopeCondition applies the implicit scope policy:
//
//	| scope          | tenant column | predicate                         |
//	|----------------|---------------|-----------------------------------|
//	| empty          | -             | 1=0 (deny all)                    |
//	| tenants only   | yes           | tenant IN (...)                   |
//	| tenants only   | no            | 1=0                               |
//	| resources only | -             | id IN (...)                       |
//	| both           | yes           | tenant IN (...) AND id IN (...)   |
//	| both           | no            | id IN (...)                       |
//
// An empty scope always compiles to a contradiction, never to "all rows".
func scopeCondition(model Scopable, scope AccessScope) clause.Expression {
	tenantCol, resourceCol := model.TenantColumn(), model.ResourceColumn()

	var tenantCond, resourceCond clause.Expression
	if scope.HasTenants() && tenantCol != "" {
		tenantCond = uuidIn(tenantCol, scope.TenantIDs())
	}
	if scope.HasResources() && resourceCol != "" {
		resourceCond = uuidIn(resourceCol, scope.ResourceIDs())
	}

	switch {
	case tenantCond != nil && resourceCond != nil:
		return clause.And(tenantCond, resourceCond)
	case tenantCond == nil && resourceCond != nil:
		return resourceCond
	case tenantCond != nil && !scope.HasResources():
		return tenantCond
	default:
		// Empty scope, or a scope the entity cannot express.
		return _alwaysFalse
	}
}

func uuidIn(column string, ids []uuid.UUID) clause.Expression {
	return clause.Expr{
		SQL:  fmt.Sprintf("%s IN ?", column),
		Vars: []any{lo.ToAnySlice(ids)},
	}
}

// UnscopedQuery is a query that has not been scoped yet. It deliberately
// exposes nothing but ScopeWith: the terminal operations live on ScopedQuery
// only, so an unscoped query cannot reach the store.
type UnscopedQuery struct {
	db    *gorm.DB
	model Scopable
}

// Secure wraps a gorm handle for one entity into the two-step scoping
// discipline:
//
//	rows := make([]user, 0)
//	err := scopager.Secure(db, user{}).
//		ScopeWith(scope).
//		All(ctx, &rows)
func Secure(db *gorm.DB, model Scopable) *UnscopedQuery {
	return &UnscopedQuery{
		db:    db.Model(model),
		model: model,
	}
}

// ScopeWith applies the access scope and unlocks the terminal operations.
// The scope predicate becomes part of the query and cannot be removed through
// the public surface afterwards.
func (u *UnscopedQuery) ScopeWith(scope AccessScope) *ScopedQuery {
	return &ScopedQuery{
		db:    u.db.Clauses(scopeCondition(u.model, scope)),
		model: u.model,
	}
}

// ScopedQuery is a query with its access scope applied. Additional filters,
// ordering and limits may be layered on top; the scope predicate stays.
type ScopedQuery struct {
	db    *gorm.DB
	model Scopable
}

// Filter layers additional predicates on top of the scope.
func (q *ScopedQuery) Filter(conds ...clause.Expression) *ScopedQuery {
	return &ScopedQuery{db: q.db.Clauses(conds...), model: q.model}
}

// Limit caps the number of returned rows.
func (q *ScopedQuery) Limit(limit int) *ScopedQuery {
	return &ScopedQuery{db: q.db.Limit(limit), model: q.model}
}

// AndID narrows the scoped query to a single resource.
func (q *ScopedQuery) AndID(id uuid.UUID) (*ScopedQuery, error) {
	resourceCol := q.model.ResourceColumn()
	if resourceCol == "" {
		return nil, fmt.Errorf("%w: entity %q has no resource column for AndID",
			ErrScopePolicy, q.model.TableName())
	}

	return &ScopedQuery{
		db: q.db.Clauses(clause.Expr{
			SQL:  fmt.Sprintf("%s = ?", resourceCol),
			Vars: []any{id},
		}),
		model: q.model,
	}, nil
}

// AndScopeFor additionally constrains a joined entity's tenant column. It is
// a no-op when the scope has no tenants or the joined entity has no tenant
// column.
func (q *ScopedQuery) AndScopeFor(joined Scopable, scope AccessScope) *ScopedQuery {
	tenantCol := joined.TenantColumn()
	if !scope.HasTenants() || tenantCol == "" {
		return q
	}

	cond := uuidIn(fmt.Sprintf("%s.%s", joined.TableName(), tenantCol), scope.TenantIDs())

	return &ScopedQuery{db: q.db.Clauses(cond), model: q.model}
}

// ScopeViaExists constrains the query through a correlated EXISTS subquery on
// a related entity that carries the tenant column the base entity lacks.
// foreignKey is the related entity's column referencing the base entity's
// resource column. No-op when the scope has no tenants or either side lacks
// the required column.
func (q *ScopedQuery) ScopeViaExists(related Scopable, foreignKey string, scope AccessScope) *ScopedQuery {
	tenantCol := related.TenantColumn()
	resourceCol := q.model.ResourceColumn()
	if !scope.HasTenants() || tenantCol == "" || resourceCol == "" {
		return q
	}

	cond := clause.Expr{
		SQL: fmt.Sprintf("EXISTS (SELECT 1 FROM %s WHERE %s.%s = %s.%s AND %s.%s IN ?)",
			related.TableName(),
			related.TableName(), foreignKey,
			q.model.TableName(), resourceCol,
			related.TableName(), tenantCol),
		Vars: []any{lo.ToAnySlice(scope.TenantIDs())},
	}

	return &ScopedQuery{db: q.db.Clauses(cond), model: q.model}
}

// All executes the query and scans every matching row into dest.
func (q *ScopedQuery) All(ctx context.Context, dest any) error {
	return q.db.WithContext(ctx).Find(dest).Error
}

// One executes the query expecting at most one row. Returns
// gorm.ErrRecordNotFound when nothing matches.
func (q *ScopedQuery) One(ctx context.Context, dest any) error {
	return q.db.WithContext(ctx).Take(dest).Error
}

// Count returns the number of matching rows.
func (q *ScopedQuery) Count(ctx context.Context) (int64, error) {
	var count int64
	err := q.db.WithContext(ctx).Count(&count).Error

	return count, err
}

// Unsafe unwraps the raw gorm handle, bypassing all further protection. The
// scope predicate applied so far stays on the returned query, but nothing
// stops the caller from building around it. The caller owns that risk.
func (q *ScopedQuery) Unsafe() *gorm.DB {
	return q.db
}
