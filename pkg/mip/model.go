package mip

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	log "github.com/golang/glog"
)

type VarKind int

const (
	BinaryVar VarKind = iota
	IntegerVar
)

// Var is a lightweight handle into a Model's variable table.
type Var struct {
	index int
}

func (v Var) Index() int {
	return v.index
}

type varData struct {
	name string
	kind VarKind
	lb   int64
	ub   int64
}

// Term is a single coefficient-variable product of a linear expression.
type Term struct {
	Var         Var
	Coefficient float64
}

// LinearExpr accumulates terms of a linear expression. All Add methods
// return the receiver so expressions can be built in a single chain.
type LinearExpr struct {
	terms  []Term
	offset float64
}

func NewLinearExpr() *LinearExpr {
	return &LinearExpr{}
}

func (e *LinearExpr) AddTerm(v Var, coefficient float64) *LinearExpr {
	e.terms = append(e.terms, Term{Var: v, Coefficient: coefficient})
	return e
}

func (e *LinearExpr) AddSum(vars ...Var) *LinearExpr {
	for _, v := range vars {
		e.AddTerm(v, 1)
	}
	return e
}

func (e *LinearExpr) AddWeightedSum(vars []Var, coefficients []float64) *LinearExpr {
	if len(vars) != len(coefficients) {
		log.Fatalf("AddWeightedSum: mismatched lengths: %d variables against %d coefficients", len(vars), len(coefficients))
	}
	for i, v := range vars {
		e.AddTerm(v, coefficients[i])
	}
	return e
}

func (e *LinearExpr) AddConstant(c float64) *LinearExpr {
	e.offset += c
	return e
}

func (e *LinearExpr) Terms() []Term {
	return e.terms
}

func (e *LinearExpr) Offset() float64 {
	return e.offset
}

type ConstraintSense int

const (
	LessOrEqual ConstraintSense = iota
	GreaterOrEqual
	Equal
)

type constraint struct {
	expr  *LinearExpr
	sense ConstraintSense
	rhs   float64
}

// Model is an integer program under construction: variables with bounds,
// linear constraints and a minimization objective. It accumulates the full
// program and is handed once to a Solver; construction performs no solver
// calls of its own.
type Model struct {
	name        string
	vars        []varData
	varsByName  map[string]int
	constraints []constraint
	objective   *LinearExpr
}

func NewModel(name string) *Model {
	return &Model{
		name:       name,
		varsByName: map[string]int{},
	}
}

func (m *Model) Name() string {
	return m.name
}

// AddBinaryVar declares a 0-1 variable. Names must be unique within the
// model since solver solution files are keyed by name.
func (m *Model) AddBinaryVar(name string) Var {
	return m.addVar(name, BinaryVar, 0, 1)
}

// AddIntegerVar declares an integer variable with inclusive finite bounds.
func (m *Model) AddIntegerVar(name string, lb, ub int64) Var {
	if lb > ub {
		log.Fatalf("AddIntegerVar: variable %q has crossed bounds [%d, %d]", name, lb, ub)
	}
	return m.addVar(name, IntegerVar, lb, ub)
}

func (m *Model) addVar(name string, kind VarKind, lb, ub int64) Var {
	if name == "" {
		log.Fatalf("addVar: empty variable name")
	}
	if _, ok := m.varsByName[name]; ok {
		log.Fatalf("addVar: duplicate variable name %q", name)
	}
	index := len(m.vars)
	m.vars = append(m.vars, varData{name: name, kind: kind, lb: lb, ub: ub})
	m.varsByName[name] = index
	return Var{index: index}
}

func (m *Model) AddLessOrEqual(expr *LinearExpr, bound float64) {
	m.addConstraint(expr, LessOrEqual, bound)
}

func (m *Model) AddGreaterOrEqual(expr *LinearExpr, bound float64) {
	m.addConstraint(expr, GreaterOrEqual, bound)
}

func (m *Model) AddEquality(expr *LinearExpr, value float64) {
	m.addConstraint(expr, Equal, value)
}

func (m *Model) addConstraint(expr *LinearExpr, sense ConstraintSense, rhs float64) {
	if expr == nil || len(expr.terms) == 0 {
		log.Fatalf("addConstraint: constraint %d has no terms", len(m.constraints))
	}
	m.constraints = append(m.constraints, constraint{expr: expr, sense: sense, rhs: rhs})
}

// Minimize installs the objective. Calling it again replaces the previous
// objective.
func (m *Model) Minimize(objective *LinearExpr) {
	if objective == nil {
		log.Fatalf("Minimize: nil objective")
	}
	m.objective = objective
}

func (m *Model) VariableCount() int {
	return len(m.vars)
}

func (m *Model) ConstraintCount() int {
	return len(m.constraints)
}

func (m *Model) VarName(v Var) string {
	return m.vars[v.index].name
}

func (m *Model) varIndex(name string) (int, bool) {
	index, ok := m.varsByName[name]
	return index, ok
}

// objectiveCoefficients folds the objective terms into one dense
// coefficient per variable.
func (m *Model) objectiveCoefficients() []float64 {
	coefficients := make([]float64, len(m.vars))
	if m.objective == nil {
		return coefficients
	}
	for _, term := range m.objective.terms {
		coefficients[term.Var.index] += term.Coefficient
	}
	return coefficients
}

// evaluateObjective recomputes the objective value from solved variable
// values. Backends report this instead of the solver's own figure so every
// backend agrees on rounding and on the objective offset.
func (m *Model) evaluateObjective(values []float64) float64 {
	objective := 0.0
	if m.objective == nil {
		return objective
	}
	for _, term := range m.objective.terms {
		objective += term.Coefficient * values[term.Var.index]
	}
	return objective + m.objective.offset
}

// rowCoefficients folds a constraint's terms into one dense coefficient per
// variable and moves the expression offset into the right-hand side.
func (c constraint) rowCoefficients(variables int) ([]float64, float64) {
	coefficients := make([]float64, variables)
	for _, term := range c.expr.terms {
		coefficients[term.Var.index] += term.Coefficient
	}
	return coefficients, c.rhs - c.expr.offset
}

const lpTermsPerLine = 8

// WriteLP serializes the model in CPLEX LP text format, understood by cbc,
// glpsol, highs and gurobi_cl alike. Every variable appears in the
// objective line, zero coefficients included, so readers that number
// columns by first appearance see them in declaration order.
func (m *Model) WriteLP() string {
	var builder strings.Builder
	fmt.Fprintf(&builder, "\\ Problem: %s\n", m.name)

	builder.WriteString("Minimize\n obj:")
	objective := m.objectiveCoefficients()
	for i, coefficient := range objective {
		writeLPTerm(&builder, i, coefficient, m.vars[i].name)
	}
	builder.WriteString("\n")

	builder.WriteString("Subject To\n")
	for row, c := range m.constraints {
		coefficients, rhs := c.rowCoefficients(len(m.vars))
		fmt.Fprintf(&builder, " c%d:", row)
		written := 0
		for i, coefficient := range coefficients {
			if coefficient == 0 {
				continue
			}
			writeLPTerm(&builder, written, coefficient, m.vars[i].name)
			written++
		}
		fmt.Fprintf(&builder, " %s %s\n", lpSense(c.sense), formatLPNumber(rhs))
	}

	var bounds, generals, binaries []string
	for _, v := range m.vars {
		switch v.kind {
		case BinaryVar:
			binaries = append(binaries, v.name)
		case IntegerVar:
			bounds = append(bounds, fmt.Sprintf(" %d <= %s <= %d", v.lb, v.name, v.ub))
			generals = append(generals, v.name)
		}
	}
	if len(bounds) > 0 {
		builder.WriteString("Bounds\n")
		for _, bound := range bounds {
			builder.WriteString(bound + "\n")
		}
	}
	writeLPSection(&builder, "Generals", generals)
	writeLPSection(&builder, "Binaries", binaries)
	builder.WriteString("End\n")
	return builder.String()
}

func writeLPTerm(builder *strings.Builder, position int, coefficient float64, name string) {
	sign := "+"
	if coefficient < 0 {
		sign = "-"
	}
	if position > 0 && position%lpTermsPerLine == 0 {
		builder.WriteString("\n ")
	}
	fmt.Fprintf(builder, " %s %s %s", sign, formatLPNumber(math.Abs(coefficient)), name)
}

func writeLPSection(builder *strings.Builder, section string, names []string) {
	if len(names) == 0 {
		return
	}
	builder.WriteString(section + "\n")
	for start := 0; start < len(names); start += lpTermsPerLine {
		end := min(start+lpTermsPerLine, len(names))
		builder.WriteString(" " + strings.Join(names[start:end], " ") + "\n")
	}
}

func lpSense(sense ConstraintSense) string {
	switch sense {
	case LessOrEqual:
		return "<="
	case GreaterOrEqual:
		return ">="
	default:
		return "="
	}
}

func formatLPNumber(value float64) string {
	return strconv.FormatFloat(value, 'g', -1, 64)
}
