package publisher

// Publisher pushes serialized listings to downstream consumers. It is an
// optional sink; the output file remains the primary destination.
type Publisher interface {
	// Publish publishes one serialized listing keyed by platform name
	Publish(platformName string, payload []byte) error

	// TrimStreams caps retained messages after a cycle completes
	TrimStreams() error

	// Close releases the underlying connection
	Close() error
}
