// Package stream serves a simulator to websocket clients.
//
// A [Session] goroutine owns the simulator and is the only code that touches
// it. Clients post pointer messages into its inbox:
//
//	{"type":"down","x":212,"y":301,"width":800,"height":600}
//
// and receive a hello on join followed by snapshots every few ticks, with
// body positions in both texture space and NDC. A client whose send buffer
// is full is dropped.
package stream
