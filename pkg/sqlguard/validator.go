// Package sqlguard validates model-generated SQL before execution. It is a
// pure text analysis: it never executes SQL and has no database dependency,
// which is what allows it to run safely on fully untrusted input.
package sqlguard

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Options configures a Validator.
type Options struct {
	// AllowedTables is the table allow-list. Names are compared
	// case-insensitively; schema-qualified names are accepted only for
	// the public schema.
	AllowedTables []string

	// TenantColumn is the column that must be bound to the tenant
	// placeholder in every statement.
	TenantColumn string

	// TenantPlaceholder is the positional placeholder index the tenant
	// column must be compared against (1 means $1).
	TenantPlaceholder int

	// DefaultLimit is appended when the statement has no LIMIT clause.
	DefaultLimit int

	// MaxLimit clamps any explicit LIMIT above it.
	MaxLimit int
}

// Result is the outcome of validating one candidate statement. When Valid
// is true, SQL is the sanitized statement: a single SELECT over allowed
// tables, carrying the tenant predicate and a bounded LIMIT. When Valid is
// false, Errors enumerates every violated rule so failures are diagnosable
// without executing anything.
type Result struct {
	Valid  bool
	SQL    string
	Errors []string
}

// Validator checks candidate SQL against the safety rules.
type Validator struct {
	opts            Options
	allowed         map[string]bool
	forbiddenVerbs  *regexp.Regexp
	systemObjects   *regexp.Regexp
	unionKeyword    *regexp.Regexp
	tenantPredicate *regexp.Regexp
	limitClause     *regexp.Regexp
}

// forbidden statement verbs, matched on word boundaries anywhere in the
// statement so they cannot be smuggled after a semicolon or UNION.
var forbiddenVerbPattern = regexp.MustCompile(
	`(?i)\b(INSERT|UPDATE|DELETE|DROP|CREATE|ALTER|TRUNCATE|GRANT|REVOKE)\b`)

// catalog and system objects: pg_catalog, information_schema, and any
// pg_-prefixed relation.
var systemObjectPattern = regexp.MustCompile(`(?i)\b(information_schema|pg_\w+)\b`)

var unionPattern = regexp.MustCompile(`(?i)\bUNION\b`)

// New creates a Validator for the given options.
func New(opts Options) *Validator {
	allowed := make(map[string]bool, len(opts.AllowedTables))
	for _, t := range opts.AllowedTables {
		allowed[strings.ToLower(t)] = true
	}

	tenantPredicate := regexp.MustCompile(fmt.Sprintf(
		`(?i)(?:\b[a-z_]\w*\.)?%s\s*=\s*\$%d\b`,
		regexp.QuoteMeta(opts.TenantColumn), opts.TenantPlaceholder))

	return &Validator{
		opts:            opts,
		allowed:         allowed,
		forbiddenVerbs:  forbiddenVerbPattern,
		systemObjects:   systemObjectPattern,
		unionKeyword:    unionPattern,
		tenantPredicate: tenantPredicate,
		limitClause:     regexp.MustCompile(`(?i)\bLIMIT\s+(\d+)`),
	}
}

// Validate checks a candidate statement. All rules run on comment-stripped
// text with string literals masked, so neither comments nor quoted text can
// hide or fake keywords. Every violated rule is collected; the statement is
// executable only when no rule fired.
func (v *Validator) Validate(candidateSQL string) Result {
	var violations []string

	stripped := stripComments(candidateSQL)
	stripped = strings.TrimSpace(stripped)
	stripped = stripTrailingSemicolon(stripped)

	if stripped == "" {
		return Result{Errors: []string{"statement is empty"}}
	}

	masked := maskStringLiterals(stripped)

	// Rule 1: single statement. The trailing semicolon is already gone, so
	// any remaining semicolon outside a string literal means a second
	// statement follows.
	if strings.ContainsRune(masked, ';') {
		violations = append(violations, "multiple SQL statements are not allowed")
	}

	// Rule 2: verb whitelist.
	if !strings.HasPrefix(strings.ToUpper(strings.TrimSpace(masked)), "SELECT") {
		violations = append(violations, "statement must begin with SELECT")
	}
	if m := v.forbiddenVerbs.FindString(masked); m != "" {
		violations = append(violations,
			fmt.Sprintf("forbidden keyword %s", strings.ToUpper(m)))
	}

	// Rule 3: no catalog or system schema access.
	if m := v.systemObjects.FindString(masked); m != "" {
		violations = append(violations,
			fmt.Sprintf("system object %s is not accessible", strings.ToLower(m)))
	}

	// Rule 4: no UNION. The pipeline only needs single-result-set answers,
	// so disallowing it removes an entire exfiltration class.
	if v.unionKeyword.MatchString(masked) {
		violations = append(violations, "UNION is not allowed")
	}

	// Rule 5: table whitelist.
	for _, table := range referencedTables(masked) {
		if !v.tableAllowed(table) {
			violations = append(violations,
				fmt.Sprintf("table %s is not in the allowed list", table))
		}
	}

	// Rule 6: mandatory tenant filter. This is the tenant isolation
	// boundary; nothing executes without it.
	if !v.tenantPredicate.MatchString(masked) {
		violations = append(violations, fmt.Sprintf(
			"statement must filter by %s = $%d",
			v.opts.TenantColumn, v.opts.TenantPlaceholder))
	}

	// Hardening: screen string literal contents for injection patterns so
	// quoted text cannot carry a smuggled payload past the masked checks.
	violations = append(violations, screenLiterals(stripped)...)

	if len(violations) > 0 {
		return Result{Errors: violations}
	}

	// Rule 7: row limit enforcement. Missing LIMIT gains the default;
	// an oversized LIMIT is clamped rather than rejected.
	sanitized := v.enforceLimit(stripped, masked)

	return Result{Valid: true, SQL: sanitized}
}

func (v *Validator) tableAllowed(name string) bool {
	lower := strings.ToLower(name)
	if schema, rest, ok := strings.Cut(lower, "."); ok {
		if schema != "public" {
			return false
		}
		lower = rest
	}
	return v.allowed[lower]
}

// enforceLimit appends or clamps LIMIT clauses. Every LIMIT in the
// statement is clamped, subqueries included, so no clause can exceed the
// maximum. The masked text has the same length as the stripped text, so
// match offsets can be applied to the real statement directly; clamping
// runs back to front to keep earlier offsets valid.
func (v *Validator) enforceLimit(stripped, masked string) string {
	matches := v.limitClause.FindAllStringSubmatchIndex(masked, -1)
	if len(matches) == 0 {
		return stripped + " LIMIT " + strconv.Itoa(v.opts.DefaultLimit)
	}

	for i := len(matches) - 1; i >= 0; i-- {
		loc := matches[i]
		value, err := strconv.Atoi(masked[loc[2]:loc[3]])
		if err != nil || value <= v.opts.MaxLimit {
			continue
		}
		stripped = stripped[:loc[2]] + strconv.Itoa(v.opts.MaxLimit) + stripped[loc[3]:]
	}

	return stripped
}
