// Package naming picks file names for produced videos.
//
// Output videos form a flat numbered sequence (1.mp4, 2.mp4, ...) in the
// output directory. The next number is derived from the directory listing
// at write time, so numbering survives restarts without extra state.
package naming
