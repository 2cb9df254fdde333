// Package problems extracts practice problems from a course's problem set
// and exam PDFs.
//
// Resources are grouped by section: the first problem set or exam of a
// section is the questions document and the first solution its answer key.
// Solutions stranded in a section without questions are paired with
// unanswered question documents by assignment key (ps3 with ps3_sol). Each
// PDF is converted to text, the text goes to the extraction oracle, and the
// answer replaces the questions resource's problems in one transaction.
//
// Every per-document failure (unreachable PDF, conversion error or timeout,
// oracle failure, empty answer) skips that document and leaves its previous
// problems untouched. Only persistence failures and cancellation stop a run.
package problems
