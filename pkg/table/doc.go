// Package table provides the in-memory tabular model used by the row synthesizer.
//
// # Model
//
// A [Table] is an ordered list of [Row] values over a fixed, ordered set of
// column names. Every cell is a [Value], which is either a number
// ([Number]) or text ([Text]). Tables and rows are immutable once built:
// accessors return copies, and operations that grow a table ([Table.Append])
// return a new table that shares the original rows.
//
// # Classification
//
// [Classify] partitions columns into [Numeric] and [Categorical] in one pass.
// A column is numeric when every cell in it is a number; anything else (text,
// booleans, dates kept as text) is categorical. The resulting [Schema] is
// computed once per table and is meant to be held for the duration of an
// operation, so a column's kind cannot drift while rows are appended.
//
// # Profiling
//
// [Profile] summarises each column (count, distinct values and, for numeric
// columns, mean, sample standard deviation, min and max) for inspection.
package table
