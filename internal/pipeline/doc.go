// Package pipeline runs the download and problems workflows for one course.
//
// Each run holds the course's run lock, carries a run id, and executes its
// stages strictly in order. Every stage logs a start, completion, or failure
// line tagged with the course, stage, and run id. A failing stage stops the
// run; degradations inside a stage (ordering fallback, skipped documents) are
// logged by the stage and reflected in the returned summary.
package pipeline
