// go-dagaudit checks that a content-addressed DAG stored as CAR shards in
// object storage is complete: that every block reachable from a root CID can
// be found in the shards that the storage layout names for that root.
//
// The work is split across the following packages:
//
//   - locator finds the shard objects for a root
//   - ingest streams CAR shards into a blockstore
//   - blockstore holds the blocks of a single audit in memory
//   - traversal walks the DAG from the root over the blockstore
//   - audit ties the above together for one invocation
//
// This package holds the error types and options shared between them.
package dagaudit
