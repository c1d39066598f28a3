// Package memlink implements memory access requests over a packet link.
//
// A Client is the transport handler of deck memory managers: it encodes
// requests as protobuf packets, sends them in order (flush-ahead writes
// jump the queue) and dispatches replies to the owner of each request.
// A Server answers requests from a Memory backend.
package memlink
