// Package traversal walks a DAG from a root CID over a blockstore and checks
// that every reachable block is present and decodes under its codec.
//
// Only two codecs are understood: raw blocks are leaves, and dag-pb blocks
// carry an ordered list of links. Any other codec fails the walk. The walk
// stops at the first failure unless it is configured to be exhaustive, in
// which case every failure found is reported together.
package traversal
