// Package cookies is the ownership boundary around HTTP cookie jars.
// A Handle carries the live jar for one linking flow; a Store persists
// exported snapshots per owner (memory, file, or Redis backed) so that a
// session authenticated in one call is still present in the next.
package cookies
