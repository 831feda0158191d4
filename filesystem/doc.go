// Package filesystem stores locker content and images on the local disk.
//
// All access goes through an *os.Root opened at the storage directory, and
// every caller-supplied path is first resolved by a Sandbox. The Sandbox
// rejects absolute paths, NUL bytes, ".." segments that climb out of the
// owner's directory, and existing symlinks along the way.
//
// On-disk layout:
//
//	<root>/<username>/<key>
//	<root>/<username>/images/<prefix>/<name>.<ext>
//
// Writes are atomic: content goes to a temp file that is renamed into place.
// Etags are modification times in Unix milliseconds and always advance when
// a key is overwritten.
package filesystem
