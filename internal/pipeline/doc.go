// Package pipeline turns a pool of source clips into finished videos.
//
// A run scans the source directory ([ScanInventory]), drops clips already
// recorded in the journal, shuffles the rest into fixed-size groups
// ([BuildGroups]) and hands them to an [Orchestrator]. For each group the
// orchestrator normalizes the clips, concatenates them, optionally mixes in
// a random background track and appends exactly one journal record, success
// or failure, before moving on. Groups never share temporaries, and a failed
// group does not stop the run.
package pipeline
