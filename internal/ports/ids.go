package ports

// IDGenerator issues numeric row identifiers. Implementations are safe for concurrent use.
type IDGenerator interface {
	NextID() int64
}
