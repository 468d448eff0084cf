package scopager

import (
	"database/sql/driver"
	"testing"
	"time"

	"gorm.io/gorm/clause"
)

func Test_tConjunct_toExpression(t *testing.T) {
	timeNow := time.Now().UTC()

	tests := []struct {
		name     string
		conjunct tConjunct
		wantSQL  string
		wantVars []interface{}
	}{
		{
			name:     "string less than",
			conjunct: tConjunct{Column: "name", Operator: OperatorLT, Value: "abc"},
			wantSQL:  "name < ?",
			wantVars: []interface{}{"abc"},
		},
		{
			name:     "timestamp greater than",
			conjunct: tConjunct{Column: "created_at", Operator: OperatorGT, Value: timeNow},
			wantSQL:  "created_at > ?",
			wantVars: []interface{}{timeNow},
		},
		{
			name:     "integer less than",
			conjunct: tConjunct{Column: "id", Operator: OperatorLT, Value: int64(10)},
			wantSQL:  "id < ?",
			wantVars: []interface{}{int64(10)},
		},
		{
			name:     "equality",
			conjunct: tConjunct{Column: "score", Operator: operatorEq, Value: int64(20)},
			wantSQL:  "score = ?",
			wantVars: []interface{}{int64(20)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expr := tt.conjunct.toGORMExpression()
			clauseExpr := expr.(clause.Expr)

			if clauseExpr.SQL != tt.wantSQL {
				t.Errorf("unexpected SQL: got %s, want %s", clauseExpr.SQL, tt.wantSQL)
			}

			if len(clauseExpr.Vars) != len(tt.wantVars) {
				t.Errorf("unexpected vars length: got %d, want %d", len(clauseExpr.Vars), len(tt.wantVars))
			}

			for i, wantVar := range tt.wantVars {
				if clauseExpr.Vars[i] != wantVar {
					t.Errorf("unexpected var[%d]: got %v, want %v", i, clauseExpr.Vars[i], wantVar)
				}
			}
		})
	}
}

func Test_tDisjunct_toExpression(t *testing.T) {
	tests := []struct {
		name     string
		disjunct tDisjunct
		wantNil  bool
	}{
		{
			name: "non-empty disjunct",
			disjunct: tDisjunct{
				{Column: "id", Operator: OperatorGT, Value: int64(5)},
				{Column: "created_at", Operator: OperatorGT, Value: "2024-01-02T03:04:05Z"},
			},
			wantNil: false,
		},
		{
			name:     "empty disjunct",
			disjunct: tDisjunct{},
			wantNil:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expr := tt.disjunct.toGORMExpression()
			if (expr == nil) != tt.wantNil {
				t.Errorf("unexpected expression result: got %v, want nil=%v", expr, tt.wantNil)
			}
		})
	}
}

func Test_tDNF_toExpression(t *testing.T) {
	tests := []struct {
		name    string
		dnf     tDNF
		wantNil bool
	}{
		{
			name: "non-empty DNF",
			dnf: tDNF{
				{
					{Column: "id", Operator: OperatorGT, Value: int64(5)},
					{Column: "created_at", Operator: OperatorGT, Value: "2024-01-02T03:04:05Z"},
				},
				{{Column: "id", Operator: OperatorGT, Value: int64(10)}},
			},
			wantNil: false,
		},
		{
			name:    "empty DNF",
			dnf:     tDNF{},
			wantNil: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expr := tt.dnf.toGORMExpression()
			if (expr == nil) != tt.wantNil {
				t.Errorf("unexpected expression result: got %v, want nil=%v", expr, tt.wantNil)
			}
		})
	}
}

func Test_tDisjunct_toSQLClause(t *testing.T) {
	tests := []struct {
		name     string
		disjunct tDisjunct
		wantSQL  string
		wantVals []driver.Value
	}{
		{
			name: "single conjunct",
			disjunct: tDisjunct{
				{Column: "id", Operator: OperatorGT, Value: int64(5)},
			},
			wantSQL:  "(id > ?)",
			wantVals: []driver.Value{int64(5)},
		},
		{
			name: "multiple conjuncts",
			disjunct: tDisjunct{
				{Column: "id", Operator: OperatorGT, Value: int64(5)},
				{Column: "name", Operator: OperatorLT, Value: "abc"},
				{Column: "active", Operator: OperatorGT, Value: true},
			},
			wantSQL:  "(id > ? AND name < ? AND active > ?)",
			wantVals: []driver.Value{int64(5), "abc", true},
		},
		{
			name:     "empty disjunct",
			disjunct: tDisjunct{},
			wantSQL:  "",
			wantVals: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotSQL, gotVals := tt.disjunct.toSQLClause()

			if gotSQL != tt.wantSQL {
				t.Errorf("toSQLClause() SQL = %v, want %v", gotSQL, tt.wantSQL)
			}

			if len(gotVals) != len(tt.wantVals) {
				t.Errorf("toSQLClause() Vals length = %v, want %v", len(gotVals), len(tt.wantVals))
			}

			for i, wantVal := range tt.wantVals {
				if gotVals[i] != wantVal {
					t.Errorf("toSQLClause() Vals[%d] = %v, want %v", i, gotVals[i], wantVal)
				}
			}
		})
	}
}

func Test_tDNF_toSQLClause(t *testing.T) {
	tests := []struct {
		name     string
		dnf      tDNF
		wantSQL  string
		wantVals []driver.Value
	}{
		{
			name: "single disjunct with single conjunct",
			dnf: tDNF{
				{{Column: "id", Operator: OperatorGT, Value: int64(5)}},
			},
			wantSQL:  "((id > ?))",
			wantVals: []driver.Value{int64(5)},
		},
		{
			name: "keyset shape over two keys",
			dnf: tDNF{
				{
					{Column: "score", Operator: OperatorGT, Value: int64(20)},
				},
				{
					{Column: "score", Operator: operatorEq, Value: int64(20)},
					{Column: "id", Operator: OperatorLT, Value: int64(2)},
				},
			},
			wantSQL:  "((score > ?) OR (score = ? AND id < ?))",
			wantVals: []driver.Value{int64(20), int64(20), int64(2)},
		},
		{
			name:     "empty DNF",
			dnf:      tDNF{},
			wantSQL:  "TRUE",
			wantVals: nil,
		},
		{
			name: "DNF with empty disjuncts",
			dnf: tDNF{
				{},
				{{Column: "id", Operator: OperatorGT, Value: int64(5)}},
				{},
			},
			wantSQL:  "((id > ?))",
			wantVals: []driver.Value{int64(5)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotSQL, gotVals := tt.dnf.toSQLClause()

			if gotSQL != tt.wantSQL {
				t.Errorf("toSQLClause() SQL = %v, want %v", gotSQL, tt.wantSQL)
			}

			if len(gotVals) != len(tt.wantVals) {
				t.Errorf("toSQLClause() Vals length = %v, want %v", len(gotVals), len(tt.wantVals))
			}

			for i, wantVal := range tt.wantVals {
				if gotVals[i] != wantVal {
					t.Errorf("toSQLClause() Vals[%d] = %v, want %v", i, gotVals[i], wantVal)
				}
			}
		})
	}
}
