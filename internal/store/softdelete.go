// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Ringdex Contributors

package store

import "strings"

// DeletedAtColumn marks a row as soft-deleted when non-NULL.
const DeletedAtColumn = "deleted_at"

// Table describes a soft-deletable table. Every lookup and every write to an
// existing row goes through SelectActive or UpdateActive, which always add the
// "not soft-deleted" filter, so a deleted row cannot be read or changed by
// accident.
type Table struct {
	Name    string
	Columns []string
}

// ActivePredicate returns the filter matching rows that are not soft-deleted.
func (t Table) ActivePredicate() string {
	return t.Name + "." + DeletedAtColumn + " IS NULL"
}

// SelectActive builds a SELECT of all columns over active rows.
// where is ANDed with the active filter and may be empty. suffix (ORDER BY,
// LIMIT, FOR UPDATE) is appended verbatim.
func (t Table) SelectActive(where string, suffix ...string) string {
	var b strings.Builder
	b.WriteString("SELECT ")
	b.WriteString(strings.Join(t.qualified(), ", "))
	b.WriteString(" FROM ")
	b.WriteString(t.Name)
	b.WriteString(" WHERE ")
	b.WriteString(t.filter(where))
	for _, s := range suffix {
		b.WriteString(" ")
		b.WriteString(s)
	}
	return b.String()
}

// UpdateActive builds an UPDATE restricted to active rows.
func (t Table) UpdateActive(set, where string) string {
	return "UPDATE " + t.Name + " SET " + set + " WHERE " + t.filter(where)
}

func (t Table) filter(where string) string {
	if where == "" {
		return t.ActivePredicate()
	}
	return t.ActivePredicate() + " AND (" + where + ")"
}

func (t Table) qualified() []string {
	cols := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		cols[i] = t.Name + "." + c
	}
	return cols
}
