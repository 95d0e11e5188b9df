// Package journal is the durable record of produced groups.
//
// The journal is a UTF-8 text file holding one JSON object per line. Every
// line names the source clips of one group and either the video made from
// them or the error that stopped it. Replaying the file yields the set of
// clips that must never be grouped again. Lines that fail to decode are
// skipped and counted, so a torn final line from a crash costs at most that
// one record.
package journal
