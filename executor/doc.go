// Package executor runs the batch plan a scheduler.Schedule produces: a
// bounded worker pool reused across batches (grounded on the
// oriumgames-bevi RunStage channel-fed pool, other_examples) plus a
// fork/join Future built on golang.org/x/sync/errgroup for the App
// package's overlapping sub-app pipeline and any ad-hoc parallel task graph
// a system wants to spawn.
package executor
