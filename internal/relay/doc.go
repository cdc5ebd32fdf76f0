// Package relay holds the domain types, error taxonomy and interfaces shared by
// the extraction and notification components, plus the Service that sequences
// them for a single request.
//
// Implementations live in sibling packages named after what they wrap:
// fetcher/colly performs the page GET, extract builds the document tree with
// goquery, and notifier/{webhook,pubsub,memory} deliver the payload.
package relay
