// Package scheduler provides the FIFO work queue that drives a crawl.
//
// Pages are appended to the tail and drained from the head. Because
// children are appended while their parent is still at the head, every
// page of template level k is processed before any page of level k+1 is
// fetched, which makes the traversal breadth-first over the template chain.
//
// Design decision: The head is peeked, processed, and only then dequeued.
// Logs and stats taken while a page is being processed therefore still see
// it as queued, which matches how the engine reports the queue length.
package scheduler
